package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"offload/internal/pass"
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the registered passes",
	Args:  cobra.NoArgs,
	RunE:  runPasses,
}

func init() {
	passesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type passPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func runPasses(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	infos := pass.Default().List()

	switch strings.ToLower(format) {
	case "json":
		payload := make([]passPayload, 0, len(infos))
		for _, info := range infos {
			payload = append(payload, passPayload{Name: info.Name, Description: info.Description})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		colored, err := useColor(cmd, stdoutFile(cmd))
		if err != nil {
			return err
		}
		renderPasses(cmd.OutOrStdout(), infos, colored)
		return nil
	default:
		return &flagValueError{flag: "format", value: format, want: "pretty|json"}
	}
}

func renderPasses(out io.Writer, infos []pass.Info, colored bool) {
	name := color.New(color.FgCyan, color.Bold)
	if colored {
		name.EnableColor()
	} else {
		name.DisableColor()
	}
	width := 0
	for _, info := range infos {
		width = max(width, runewidth.StringWidth(info.Name))
	}
	for _, info := range infos {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(info.Name))
		fmt.Fprintf(out, "%s%s  %s\n", name.Sprint(info.Name), pad, info.Description)
	}
}
