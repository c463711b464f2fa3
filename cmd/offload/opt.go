package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"offload/internal/irstore"
	"offload/internal/observ"
	"offload/internal/pass"
	"offload/internal/pipeline"
)

var optCmd = &cobra.Command{
	Use:   "opt [flags] <file.ir|file.irpack|directory>...",
	Short: "Run a pass pipeline over IR modules",
	Long: `Run a pass pipeline over IR modules and print the transformed IR.
Directories are searched recursively for .ir and .irpack files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpt,
}

func init() {
	optCmd.Flags().StringSliceP("pass", "p", nil, "pass to run, in order (repeatable; default from "+configFileName+")")
	optCmd.Flags().String("emit", "", "output form (text|irpack|none)")
	optCmd.Flags().StringP("output", "o", "", "output file, or directory when several inputs are given")
	optCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	optCmd.Flags().StringSlice("attach-device", nil, "replace the module device list (repeatable)")
	optCmd.Flags().Bool("verify-each", false, "verify the module after every pass")
	optCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	addDiagFlags(optCmd)
}

// optOptions is the resolved configuration of one opt run.
type optOptions struct {
	req    pipeline.Request
	output string
	ui     uiMode
	diag   diagOptions
	quiet  bool
	timing bool
}

func readOptOptions(cmd *cobra.Command, args []string) (optOptions, error) {
	var opts optOptions
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return opts, err
	}

	files, err := pipeline.ListFiles(args)
	if err != nil {
		return opts, err
	}
	if len(files) == 0 {
		return opts, fmt.Errorf("no %s or %s files found", pipeline.TextExt, irstore.Ext)
	}

	passes, err := cmd.Flags().GetStringSlice("pass")
	if err != nil {
		return opts, fmt.Errorf("failed to get pass flag: %w", err)
	}
	if !cmd.Flags().Changed("pass") {
		passes = cfg.Pipeline.Passes
	}

	emitStr, err := cmd.Flags().GetString("emit")
	if err != nil {
		return opts, fmt.Errorf("failed to get emit flag: %w", err)
	}
	if emitStr == "" {
		emitStr = cfg.Output.Emit
	}
	emit, err := pipeline.ParseEmitFormat(emitStr)
	if err != nil {
		return opts, err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = cfg.Pipeline.Jobs
	}

	attach, err := cmd.Flags().GetStringSlice("attach-device")
	if err != nil {
		return opts, fmt.Errorf("failed to get attach-device flag: %w", err)
	}
	if !cmd.Flags().Changed("attach-device") && len(cfg.Devices.Attach) > 0 {
		attach = cfg.Devices.Attach
	}

	verifyEach, err := cmd.Flags().GetBool("verify-each")
	if err != nil {
		return opts, fmt.Errorf("failed to get verify-each flag: %w", err)
	}
	if !cmd.Flags().Changed("verify-each") {
		verifyEach = cfg.Pipeline.VerifyEach
	}

	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, fmt.Errorf("failed to get output flag: %w", err)
	}
	if emit == pipeline.EmitSnapshot && opts.output == "" {
		return opts, errors.New("--emit=irpack needs --output")
	}

	uiStr, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiStr); err != nil {
		return opts, err
	}

	if opts.diag, err = readDiagOptions(cmd, cfg); err != nil {
		return opts, err
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timing, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}

	opts.req = pipeline.Request{
		Files:          files,
		Passes:         passes,
		Registry:       pass.Default(),
		VerifyEach:     verifyEach,
		AttachDevices:  attach,
		Emit:           emit,
		Jobs:           jobs,
		MaxDiagnostics: opts.diag.max,
	}
	if opts.timing {
		opts.req.Timer = observ.NewTimer()
	}
	return opts, nil
}

func runOpt(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	opts, err := readOptOptions(cmd, args)
	if err != nil {
		return err
	}
	res, err := runPipeline(cmd, "offload opt", opts.req, opts.ui)
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), res, opts.diag); err != nil {
		return err
	}
	if err := writeOutputs(cmd.OutOrStdout(), res, opts.output, opts.req.Emit); err != nil {
		return err
	}
	if !opts.quiet {
		printNotes(cmd.ErrOrStderr(), res)
	}
	if opts.timing {
		printTimings(cmd.ErrOrStderr(), res, opts.req.Timer)
	}
	return failedError(res)
}

// runPipeline runs req, with the progress UI when mode asks for it.
func runPipeline(cmd *cobra.Command, title string, req pipeline.Request, mode uiMode) (pipeline.Result, error) {
	if shouldUseTUI(mode) {
		return runWithUI(cmd.Context(), title, req)
	}
	return pipeline.Run(cmd.Context(), req)
}

// writeOutputs writes every successful file's output. With several inputs
// output names a directory and each result keeps its input base name.
func writeOutputs(stdout io.Writer, res pipeline.Result, output string, emit pipeline.EmitFormat) error {
	var ok []*pipeline.FileResult
	for i := range res.Files {
		if fr := &res.Files[i]; !fr.Failed() && fr.Output != nil {
			ok = append(ok, fr)
		}
	}
	if len(ok) == 0 {
		return nil
	}

	if output == "" {
		for _, fr := range ok {
			if len(res.Files) > 1 {
				fmt.Fprintf(stdout, "// %s\n", fr.Path)
			}
			if _, err := stdout.Write(fr.Output); err != nil {
				return err
			}
		}
		return nil
	}

	if len(res.Files) == 1 {
		return writeFileAtomic(output, ok[0].Output)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	ext := pipeline.TextExt
	if emit == pipeline.EmitSnapshot {
		ext = irstore.Ext
	}
	for _, fr := range ok {
		base := strings.TrimSuffix(filepath.Base(fr.Path), filepath.Ext(fr.Path))
		if err := writeFileAtomic(filepath.Join(output, base+ext), fr.Output); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()        //nolint:errcheck
		_ = os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printNotes(w io.Writer, res pipeline.Result) {
	for i := range res.Files {
		fr := &res.Files[i]
		for _, note := range fr.Notes {
			fmt.Fprintf(w, "%s: %s\n", fr.Path, note)
		}
	}
}

type failedFilesError struct {
	failed int
	total  int
}

func (e *failedFilesError) Error() string {
	return fmt.Sprintf("%d of %d files failed", e.failed, e.total)
}

func failedError(res pipeline.Result) error {
	if n := res.Failed(); n > 0 {
		return &failedFilesError{failed: n, total: len(res.Files)}
	}
	return nil
}
