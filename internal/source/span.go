package source

// Span is a half-open byte range in one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Len is the width of the span in bytes.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Cover returns the smallest span containing s and other. Spans from
// different files do not combine; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}
