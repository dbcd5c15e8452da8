package nav

import "github.com/ziadkadry99/walkthrough/internal/catalog"

// Entry is the state stored with a browser history entry.
type Entry struct {
	Lecture catalog.Lecture `json:"lecture"`
	URL     string          `json:"url"`
}

// History records navigations in the browser history.
type History interface {
	// Replace overwrites the current entry.
	Replace(Entry)
	// Push adds a new entry after the current one.
	Push(Entry)
}

// HistoryOp is the history effect of a navigation.
type HistoryOp string

const (
	HistoryNone    HistoryOp = ""
	HistoryReplace HistoryOp = "replace"
	HistoryPush    HistoryOp = "push"
)

// Directive is a History that keeps only the last operation. The viewer host
// hands it to the page, which applies it to the real browser history.
type Directive struct {
	Op    HistoryOp
	Entry *Entry
}

func (d *Directive) Replace(e Entry) { d.Op, d.Entry = HistoryReplace, &e }
func (d *Directive) Push(e Entry)    { d.Op, d.Entry = HistoryPush, &e }

// MemoryHistory is a browser-like history stack with back and forward.
type MemoryHistory struct {
	entries []Entry
	index   int

	Pushes   int
	Replaces int
}

// NewMemoryHistory returns an empty history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{index: -1}
}

func (h *MemoryHistory) Replace(e Entry) {
	h.Replaces++
	if h.index < 0 {
		h.entries = append(h.entries, e)
		h.index = 0
		return
	}
	h.entries[h.index] = e
}

func (h *MemoryHistory) Push(e Entry) {
	h.Pushes++
	h.entries = append(h.entries[:h.index+1], e)
	h.index++
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int { return len(h.entries) }

// Current returns the current entry, or nil when the history is empty.
func (h *MemoryHistory) Current() *Entry {
	if h.index < 0 {
		return nil
	}
	e := h.entries[h.index]
	return &e
}

// Go moves delta entries and returns the entry landed on, like history.go.
// It returns nil and stays put when the move leaves the stack.
func (h *MemoryHistory) Go(delta int) *Entry {
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		return nil
	}
	h.index = next
	return h.Current()
}

// Back moves one entry back.
func (h *MemoryHistory) Back() *Entry { return h.Go(-1) }

// Forward moves one entry forward.
func (h *MemoryHistory) Forward() *Entry { return h.Go(1) }
