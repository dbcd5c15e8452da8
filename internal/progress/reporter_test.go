package progress

import (
	"bytes"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf, Description: "Checking narratives"}
	r.Start(2)
	r.Update(1, "1-1.md")
	r.Update(2, "1-2.md")
	r.Finish()

	want := "Checking narratives: 2 files\n[1/2] 1-1.md\n[2/2] 1-2.md\nChecking narratives: done\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
