package source

import "strings"

// FileID indexes a File inside its FileSet.
type FileID uint32

// FileFlags records how a file's content was obtained and normalized.
type FileFlags uint8

const (
	// FileVirtual marks content that did not come from disk (stdin, tests).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks a file whose UTF-8 byte order mark was stripped.
	FileHadBOM
	// FileNormalizedCRLF marks a file whose CRLF line endings became LF.
	FileNormalizedCRLF
)

var flagNames = [...]string{"virtual", "bom", "crlf"}

func (f FileFlags) String() string {
	var parts []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// File is one loaded IR module source. Content is already normalized and
// LineIdx holds the offset of every '\n' in it.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol is a 1-based line and column.
type LineCol struct {
	Line uint32
	Col  uint32
}
