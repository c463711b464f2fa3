package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"offload/internal/diag"
	"offload/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if w == nil || bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		start, _ := fs.Resolve(d.Primary)
		f := fs.Get(d.Primary.File)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(f, fs.BaseDir(), opts.PathMode), start.Line, start.Col,
			p.severity(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
		writeSnippet(w, fs, d.Primary, opts.Context, p)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				nstart, _ := fs.Resolve(note.Span)
				nf := fs.Get(note.Span.File)
				fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n", p.note.Sprint("note"),
					formatPath(nf, fs.BaseDir(), opts.PathMode), nstart.Line, nstart.Col, note.Msg)
			}
		}
	}
}

type palette struct {
	err, warn, info, code, note, caret, gutter *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan),
		code:   mk(color.Faint),
		note:   mk(color.FgBlue, color.Bold),
		caret:  mk(color.FgGreen, color.Bold),
		gutter: mk(color.FgBlue),
	}
}

func (p palette) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.err.Sprint(sev.String())
	case diag.SevWarning:
		return p.warn.Sprint(sev.String())
	default:
		return p.info.Sprint(sev.String())
	}
}

// writeSnippet prints the primary line with ctx lines around it and a caret
// line under the span. Caret columns follow display width, not bytes.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, ctx int8, p palette) {
	f := fs.Get(span.File)
	if len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	line := f.Line(start.Line)

	ctxLines := uint32(max(ctx, 0))
	first := uint32(1)
	if start.Line > ctxLines {
		first = start.Line - ctxLines
	}
	gutterWidth := len(fmt.Sprint(start.Line + ctxLines))
	for n := first; n < start.Line; n++ {
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, n), f.Line(n))
	}
	fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, start.Line), line)

	startCol := int(start.Col) - 1
	startCol = min(max(startCol, 0), len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(max(int(end.Col)-1, startCol), len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:startCol]))
	width := max(runewidth.StringWidth(line[startCol:endCol]), 1)
	marker := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), p.caret.Sprint(marker))

	for n := start.Line + 1; n <= start.Line+ctxLines; n++ {
		next := f.Line(n)
		if next == "" && n > uint32(len(f.LineIdx))+1 {
			break
		}
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, n), next)
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", " ")
}

func formatPath(f *source.File, baseDir string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", baseDir)
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
