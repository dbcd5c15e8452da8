// Package present renders a lecture: its title, its embedded video and its
// narrative markdown.
package present

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhtml "html"
	"html/template"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/ziadkadry99/walkthrough/internal/catalog"
	"github.com/ziadkadry99/walkthrough/internal/log"
)

// ErrNarrativeFetch is set on Content when the narrative file cannot be fetched.
var ErrNarrativeFetch = errors.New("narrative fetch failed")

// DefaultEmbedBase is the player URL the video ID is appended to.
const DefaultEmbedBase = "https://www.youtube.com/embed/"

// Config controls rendering.
type Config struct {
	Style     string // chroma style name
	EmbedBase string
	NoVideo   bool
	RepoURL   string // adds a "star it on GitHub" footer when set
}

// Content is a rendered lecture.
type Content struct {
	Title    string
	EmbedURL string
	Body     template.HTML
	Footer   template.HTML
	NotFound bool
	Err      error
}

// Presenter renders lectures. It is safe for concurrent use.
type Presenter struct {
	src catalog.Source
	md  goldmark.Markdown
	cfg Config
}

// New returns a Presenter reading narratives from src.
func New(src catalog.Source, cfg Config) *Presenter {
	if cfg.Style == "" {
		cfg.Style = "github"
	}
	if cfg.EmbedBase == "" {
		cfg.EmbedBase = DefaultEmbedBase
	}
	hlOpts := []highlighting.Option{
		highlighting.WithStyle(cfg.Style),
		highlighting.WithGuessLanguage(true),
		highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(hlOpts...),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(newMarkRenderer(hlOpts...), 100)),
		),
	)
	return &Presenter{src: src, md: md, cfg: cfg}
}

// EmbedURL returns the player URL for a video link: the last path segment of
// href is the video ID.
func EmbedURL(base, href string) string {
	href = strings.TrimRight(href, "/")
	id := href[strings.LastIndex(href, "/")+1:]
	if id == "" {
		return ""
	}
	return base + id + "?rel=0&showinfo=0"
}

// Present renders lec. A failed narrative fetch leaves Body empty and sets
// Err; the title and video are still rendered.
func (p *Presenter) Present(ctx context.Context, lec catalog.Lecture) Content {
	c := Content{Title: lec.Title, NotFound: lec.IsError()}
	if !p.cfg.NoVideo {
		c.EmbedURL = EmbedURL(p.cfg.EmbedBase, lec.Href)
	}

	logger := log.FromContext(ctx, "present")
	text, err := p.src.Fetch(ctx, lec.MD)
	if err != nil {
		c.Err = fmt.Errorf("%w: %s: %w", ErrNarrativeFetch, lec.MD, err)
		logger.Warn().Err(err).Str(log.FieldFile, lec.MD).Msg("narrative fetch failed")
		return c
	}
	body, err := p.Render(text)
	if err != nil {
		c.Err = fmt.Errorf("%w: rendering %s: %w", ErrNarrativeFetch, lec.MD, err)
		logger.Warn().Err(err).Str(log.FieldFile, lec.MD).Msg("narrative render failed")
		return c
	}
	c.Body = body
	c.Footer = p.footer()
	return c
}

// Render converts narrative markdown to HTML.
func (p *Presenter) Render(markdown []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := p.md.Convert(markdown, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (p *Presenter) footer() template.HTML {
	if p.cfg.RepoURL == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf(
		`<div id="star-github"><p>If you find this walkthrough helpful, please take a moment to <a href="%s" target="_blank" rel="noopener">star&nbsp;it&nbsp;on&nbsp;GitHub</a></p></div>`,
		stdhtml.EscapeString(p.cfg.RepoURL)))
}

// CSS returns the stylesheet for highlighted code blocks.
func (p *Presenter) CSS() ([]byte, error) {
	var buf bytes.Buffer
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(&buf, styles.Get(p.cfg.Style)); err != nil {
		return nil, fmt.Errorf("writing %s css: %w", p.cfg.Style, err)
	}
	return buf.Bytes(), nil
}
