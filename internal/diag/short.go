package diag

import (
	"cmp"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"offload/internal/source"
)

// shortLine is one rendered line of the short format.
type shortLine struct {
	sev  string
	code string
	path string
	line uint32
	col  uint32
	msg  string
}

func (l shortLine) String() string {
	var b strings.Builder
	b.WriteString(l.sev)
	b.WriteByte(' ')
	b.WriteString(l.code)
	b.WriteByte(' ')
	b.WriteString(l.path)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(l.line), 10))
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(uint64(l.col), 10))
	b.WriteByte(' ')
	b.WriteString(l.msg)
	return b.String()
}

// FormatShortDiagnostics renders one line per diagnostic (and per note when
// includeNotes is set):
//
//	error IR3001 dir/a.ir:3:7 use of undefined value %x
//
// Lines are sorted by position and joined with '\n'. Diagnostics whose span
// names a file outside fs are skipped.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	lines := make([]shortLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		if l, ok := locate(fs, d.Primary); ok {
			l.sev, l.code, l.msg = strings.ToLower(d.Severity.String()), d.Code.ID(), oneLine(d.Message)
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := locate(fs, n.Span); ok {
				l.sev, l.code, l.msg = "note", d.Code.ID(), oneLine(n.Msg)
				lines = append(lines, l)
			}
		}
	}

	slices.SortStableFunc(lines, func(a, b shortLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.col, b.col),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.msg, b.msg),
		)
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

func locate(fs *source.FileSet, sp source.Span) (shortLine, bool) {
	if int(sp.File) >= fs.Len() {
		return shortLine{}, false
	}
	file := fs.Get(sp.File)
	if int(sp.Start) > len(file.Content) {
		return shortLine{}, false
	}
	start, _ := fs.Resolve(sp)
	path := filepath.ToSlash(file.FormatPath("relative", fs.BaseDir()))
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return shortLine{path: path, line: start.Line, col: start.Col}, true
}

func oneLine(msg string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(strings.ReplaceAll(msg, "\r", "\n")), " "))
}
