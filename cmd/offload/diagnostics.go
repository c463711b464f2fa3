package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"offload/internal/diag"
	"offload/internal/diagfmt"
	"offload/internal/pipeline"
)

type diagFormat string

const (
	diagFormatPretty diagFormat = "pretty"
	diagFormatShort  diagFormat = "short"
	diagFormatJSON   diagFormat = "json"
)

func parseDiagFormat(s string) (diagFormat, error) {
	switch f := diagFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case diagFormatPretty, diagFormatShort, diagFormatJSON:
		return f, nil
	default:
		return "", &flagValueError{flag: "format", value: s, want: "pretty|short|json"}
	}
}

type flagValueError struct {
	flag  string
	value string
	want  string
}

func (e *flagValueError) Error() string {
	return fmt.Sprintf("invalid --%s value %q (expected %s)", e.flag, e.value, e.want)
}

// diagOptions are the diagnostic rendering flags shared by opt and verify.
type diagOptions struct {
	format    diagFormat
	withNotes bool
	fullPath  bool
	color     bool
	max       int
}

func addDiagFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "", "diagnostics format (pretty|short|json); default from "+configFileName)
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func readDiagOptions(cmd *cobra.Command, cfg toolConfig) (diagOptions, error) {
	var opts diagOptions
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if formatStr == "" {
		formatStr = cfg.Output.Diagnostics
	}
	if opts.format, err = parseDiagFormat(formatStr); err != nil {
		return opts, err
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return opts, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if opts.max, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.color, err = useColor(cmd, os.Stderr); err != nil {
		return opts, err
	}
	return opts, nil
}

// printDiagnostics merges the per-file bags of res and renders them once.
func printDiagnostics(w io.Writer, res pipeline.Result, opts diagOptions) error {
	limit := opts.max
	if limit <= 0 {
		limit = 100
	}
	merged := diag.NewBag(limit)
	for i := range res.Files {
		if res.Files[i].Bag != nil {
			merged.Merge(res.Files[i].Bag)
		}
	}
	if merged.Len() == 0 && opts.format != diagFormatJSON {
		return nil
	}
	merged.Sort()
	merged.Dedup()

	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch opts.format {
	case diagFormatPretty:
		diagfmt.Pretty(w, merged, res.FileSet, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: opts.withNotes,
		})
	case diagFormatShort:
		if out := diag.FormatShortDiagnostics(merged.Items(), res.FileSet, opts.withNotes); out != "" {
			fmt.Fprintln(w, out)
		}
	case diagFormatJSON:
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              limit,
			IncludeNotes:     opts.withNotes,
		}
		if err := diagfmt.JSON(w, merged, res.FileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}
