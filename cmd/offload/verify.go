package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"offload/internal/irstore"
	"offload/internal/pass"
	"offload/internal/pipeline"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] <file.ir|file.irpack|directory>...",
	Short: "Check IR modules for structural errors",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	addDiagFlags(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readDiagOptions(cmd, cfg)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	files, err := pipeline.ListFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s or %s files found", pipeline.TextExt, irstore.Ext)
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Request{
		Files:          files,
		Passes:         []string{pass.VerifyName},
		Registry:       pass.Default(),
		Emit:           pipeline.EmitNone,
		Jobs:           jobs,
		MaxDiagnostics: opts.max,
	})
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), res, opts); err != nil {
		return err
	}
	if !quiet {
		for i := range res.Files {
			if fr := &res.Files[i]; !fr.Failed() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", fr.Path)
			}
		}
	}
	return failedError(res)
}
