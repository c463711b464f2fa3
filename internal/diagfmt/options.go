package diagfmt

// PathMode selects how file paths appear in rendered diagnostics.
type PathMode uint8

const (
	// PathModeAuto prints short and relative paths as given and cuts long
	// absolute ones down to the base name.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative // relative to the FileSet base directory
	PathModeBasename
)

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	Context   int8 // source lines shown around the primary line
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	Max              int // cap on emitted entries, 0 for none
	IncludeNotes     bool
}
