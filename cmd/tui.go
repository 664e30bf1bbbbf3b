package cmd

import (
	"context"
	"fmt"

	"github.com/jfmyers9/collagefm/internal/config"
	"github.com/jfmyers9/collagefm/internal/tui"
	"github.com/spf13/cobra"
)

var (
	tuiOutput     string
	tuiBackground string
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Generate collages from a terminal form",
	Long: `Open a terminal form with a username field and dropdowns for the
period, grid dimension and artwork size.

The form starts from the options of the last successful run. Generating
writes the collage to the output file and shows the result, or the error
as "[Kind] - message", in the status line. Recent runs are listed below
the form.

Keys:
  Tab/Shift-Tab  move between fields
  Enter          activate the focused button
  Esc            cancel a running generation
  Ctrl-C         quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVarP(&tuiOutput, "output", "o", "", "Output file (default from config: collage.png)")
	tuiCmd.Flags().StringVar(&tuiBackground, "background", "", "Empty cell fill: black, white, dominant or #rrggbb")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The terminal is owned by tview, so logs only go to a file
	if logFile == "" {
		logLevel = "disabled"
	}

	c, err := buildComponents(cfg, tuiBackground, 0)
	if err != nil {
		return err
	}
	defer c.Close()

	output := tuiOutput
	if output == "" {
		output = cfg.Output
	}

	app := tui.New(tui.Config{Output: output, Tables: c.tables}, c.generator, c.options, c.recorder(), c.logger)
	if err := app.Run(context.Background()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
