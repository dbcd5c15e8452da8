package present

import (
	"bytes"
	"html"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var (
	markOpen  = []byte(`~mark\`)
	markClose = []byte(`\mark~`)
)

// markRenderer renders code blocks with ~mark\ ... \mark~ emphasis. Fenced
// blocks without markers go to the regular highlighting renderer; indented
// blocks are always highlighted here.
type markRenderer struct {
	inner renderer.NodeRenderer
	funcs map[ast.NodeKind]renderer.NodeRendererFunc
}

func newMarkRenderer(opts ...highlighting.Option) *markRenderer {
	return &markRenderer{
		inner: highlighting.NewHTMLRenderer(opts...),
		funcs: make(map[ast.NodeKind]renderer.NodeRendererFunc),
	}
}

// Register captures the inner renderer's functions.
func (r *markRenderer) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	r.funcs[kind] = fn
}

// SetOption forwards renderer options such as html.WithUnsafe.
func (r *markRenderer) SetOption(name renderer.OptionName, value interface{}) {
	if so, ok := r.inner.(renderer.SetOptioner); ok {
		so.SetOption(name, value)
	}
}

func (r *markRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	r.inner.RegisterFuncs(r)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

// blockText joins the lines of a code block.
func blockText(source []byte, node ast.Node) []byte {
	var code bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}
	return code.Bytes()
}

func hasMarkers(code []byte) bool {
	return bytes.Contains(code, markOpen) || bytes.Contains(code, markClose)
}

func (r *markRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	code := blockText(source, n)
	if !hasMarkers(code) {
		if inner := r.funcs[ast.KindFencedCodeBlock]; inner != nil {
			return inner(w, source, node, entering)
		}
	}
	if !entering {
		return ast.WalkContinue, nil
	}
	writeMarked(w, string(n.Language(source)), string(code))
	return ast.WalkContinue, nil
}

// renderCodeBlock highlights indented code blocks. They carry no language,
// so the lexer is guessed from the content.
func (r *markRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	writeMarked(w, "", string(blockText(source, node)))
	return ast.WalkContinue, nil
}

type markEvent struct {
	offset int
	open   bool
}

// stripMarkers removes the markers from code and returns where they were.
func stripMarkers(code string) (string, []markEvent) {
	var (
		out    bytes.Buffer
		events []markEvent
	)
	b := []byte(code)
	for len(b) > 0 {
		switch {
		case bytes.HasPrefix(b, markOpen):
			events = append(events, markEvent{offset: out.Len(), open: true})
			b = b[len(markOpen):]
		case bytes.HasPrefix(b, markClose):
			events = append(events, markEvent{offset: out.Len()})
			b = b[len(markClose):]
		default:
			out.WriteByte(b[0])
			b = b[1:]
		}
	}
	return out.String(), events
}

func lexerFor(lang, code string) chroma.Lexer {
	var l chroma.Lexer
	if lang != "" {
		l = lexers.Get(lang)
	}
	if l == nil {
		l = lexers.Analyse(code)
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

func tokenClass(t chroma.TokenType) string {
	for t != 0 {
		if cls, ok := chroma.StandardTypes[t]; ok {
			return cls
		}
		t = t.Parent()
	}
	return chroma.StandardTypes[t]
}

// writeMarked highlights code with chroma classes and wraps the marked ranges
// in <mark>. Marks sit between token spans, never inside one.
func writeMarked(w util.BufWriter, lang, code string) {
	plain, events := stripMarkers(code)

	var tokens []chroma.Token
	if it, err := lexerFor(lang, plain).Tokenise(nil, plain); err == nil {
		tokens = it.Tokens()
	} else {
		tokens = []chroma.Token{{Type: chroma.Text, Value: plain}}
	}

	_, _ = w.WriteString(`<pre class="chroma"><code>`)
	depth := 0
	flush := func(offset int) {
		for len(events) > 0 && events[0].offset <= offset {
			ev := events[0]
			events = events[1:]
			switch {
			case ev.open:
				_, _ = w.WriteString("<mark>")
				depth++
			case depth > 0:
				_, _ = w.WriteString("</mark>")
				depth--
			}
		}
	}
	span := func(cls, text string) {
		if text == "" {
			return
		}
		if cls == "" {
			_, _ = w.WriteString(html.EscapeString(text))
			return
		}
		_, _ = w.WriteString(`<span class="` + cls + `">` + html.EscapeString(text) + `</span>`)
	}

	pos := 0
	for _, tok := range tokens {
		cls := tokenClass(tok.Type)
		value := tok.Value
		for value != "" {
			flush(pos)
			cut := len(value)
			if len(events) > 0 && events[0].offset < pos+cut {
				cut = events[0].offset - pos
			}
			span(cls, value[:cut])
			pos += cut
			value = value[cut:]
		}
	}
	flush(len(plain))
	for ; depth > 0; depth-- {
		_, _ = w.WriteString("</mark>")
	}
	_, _ = w.WriteString("</code></pre>\n")
}
