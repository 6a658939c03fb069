package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"desktimer/internal/core/model"
)

// PresetsCmd implements the 'presets' command.
type PresetsCmd struct{}

func (cmd *PresetsCmd) Run(globals *Global, root *CLI) error {
	settings, _ := loadSettings(root, globals.Logger)
	return printPresets(os.Stdout, allPresets(settings, globals.Logger))
}

func printPresets(out io.Writer, presets []model.Preset) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tFOCUS\tSHORT\tLONG")
	for _, preset := range presets {
		fmt.Fprintf(writer, "%s\t%d\t%d\t%d\n", preset.Name, preset.Durations.Focus, preset.Durations.Short, preset.Durations.Long)
	}
	return writer.Flush()
}
