package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/spf13/cobra"
)

var optionsReset bool

// optionsCmd represents the options command
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the saved options and the available choices",
	Long: `Show the options saved by the last successful run and every label
accepted for the period, dimension and image size.

Options are stored in ~/.config/collagefm/options.properties. Use --reset
to restore the defaults.`,
	RunE: runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)

	optionsCmd.Flags().BoolVar(&optionsReset, "reset", false, "Restore the default options")
}

func runOptions(cmd *cobra.Command, args []string) error {
	logger := setupLogger(logFile, logLevel)
	tables := collage.DefaultTables()
	store := newOptionsStore(tables, logger)
	out := cmd.OutOrStdout()

	if optionsReset {
		if err := store.Save(store.Defaults()); err != nil {
			return fmt.Errorf("failed to reset options: %w", err)
		}
		fmt.Fprintln(out, "Options reset to defaults")
	}

	req, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load saved options, showing defaults")
	}

	writeOptions(out, store.Path(), req, tables)
	return nil
}

// writeOptions prints the current selection followed by the label tables
func writeOptions(w io.Writer, path string, req collage.Request, tables *collage.Tables) {
	user := req.Username
	if user == "" {
		user = "(none)"
	}

	fmt.Fprintf(w, "Saved options (%s)\n", path)
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Username:", 12), user)
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Period:", 12), req.Period)
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Dimension:", 12), req.Dimension)
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Image size:", 12), req.ImageSize)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available choices")
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Period:", 12), strings.Join(tables.Period.Labels(), ", "))
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Dimension:", 12), strings.Join(tables.Dimension.Labels(), ", "))
	fmt.Fprintf(w, "  %s %s\n", padToWidth("Image size:", 12), strings.Join(tables.ImageSize.Labels(), ", "))
}
