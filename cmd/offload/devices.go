package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"offload/internal/devices"
	"offload/internal/pipeline"
)

var devicesCmd = &cobra.Command{
	Use:   "devices [flags] <file.ir|file.irpack>",
	Short: "Show the runtime devices attached to a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevices,
}

func init() {
	devicesCmd.Flags().String("type", "", "only list devices of this type (e.g. TPU)")
	devicesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type devicePayload struct {
	Name    string `json:"name"`
	Job     string `json:"job"`
	Replica int    `json:"replica"`
	Task    int    `json:"task"`
	Type    string `json:"type"`
	ID      int    `json:"id"`
}

func runDevices(cmd *cobra.Command, args []string) error {
	typ, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return &flagValueError{flag: "format", value: format, want: "pretty|json"}
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	// An empty pipeline only parses.
	res, err := pipeline.Run(cmd.Context(), pipeline.Request{
		Files:          args,
		Emit:           pipeline.EmitNone,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return err
	}
	fr := &res.Files[0]
	if fr.Failed() {
		colored, colorErr := useColor(cmd, os.Stderr)
		if colorErr != nil {
			return colorErr
		}
		if err := printDiagnostics(cmd.ErrOrStderr(), res, diagOptions{format: diagFormatPretty, color: colored, max: maxDiagnostics}); err != nil {
			return err
		}
		return failedError(res)
	}

	devs, err := devices.Parse(fr.Module)
	if err != nil {
		return fmt.Errorf("%s: %w", fr.Path, err)
	}
	names := devs.Names()
	if typ != "" {
		names = devs.ByType(typ)
	}

	if format == "json" {
		payload := make([]devicePayload, 0, len(names))
		for _, name := range names {
			p := devs[name]
			payload = append(payload, devicePayload{Name: name, Job: p.Job, Replica: p.Replica, Task: p.Task, Type: p.Type, ID: p.ID})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	colored, err := useColor(cmd, stdoutFile(cmd))
	if err != nil {
		return err
	}
	renderDevices(cmd.OutOrStdout(), devs, names, colored)
	return nil
}

// renderDevices prints names grouped by device type.
func renderDevices(out io.Writer, devs devices.RuntimeDevices, names []string, colored bool) {
	heading := color.New(color.FgYellow, color.Bold)
	if colored {
		heading.EnableColor()
	} else {
		heading.DisableColor()
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "no devices")
		return
	}

	groups := make(map[string][]string)
	for _, name := range names {
		typ := devs[name].Type
		groups[typ] = append(groups[typ], name)
	}
	types := make([]string, 0, len(groups))
	for typ := range groups {
		types = append(types, typ)
	}
	sort.Strings(types)

	for _, typ := range types {
		fmt.Fprintf(out, "%s (%d)\n", heading.Sprint(typ), len(groups[typ]))
		for _, name := range groups[typ] {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
}
