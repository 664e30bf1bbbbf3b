package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jfmyers9/collagefm/internal/config"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var (
	historyUser    string
	historyLimit   int
	historyFailed  bool
	historyCleanup time.Duration
)

// Column widths for the history table
const (
	colWhen   = 16
	colUser   = 16
	colPeriod = 8
	colGrid   = 6
	colSize   = 11
	colResult = 17
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous collage runs",
	Long: `List previous collage runs, newest first.

Every run from generate, tui and serve is recorded with its options,
outcome and duration in ~/.local/share/collagefm/history.db.

Examples:
  collagefm history
  collagefm history -u rj -n 5
  collagefm history --failed
  collagefm history --cleanup 720h`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "Only show runs for this username")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Only show failed runs")
	historyCmd.Flags().DurationVar(&historyCleanup, "cleanup", 0, "Delete runs older than this before listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := history.NewStore(filepath.Join(cfg.DataDir, history.FileName))
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if historyCleanup > 0 {
		deleted, err := store.Cleanup(ctx, historyCleanup)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %d runs older than %s\n", deleted, historyCleanup)
	}

	limit := historyLimit
	if historyFailed {
		// Filtering happens after the query
		limit = 0
	}
	runs, err := store.Recent(ctx, historyUser, limit)
	if err != nil {
		return err
	}
	if historyFailed {
		runs = failedRuns(runs, historyLimit)
	}

	total, err := store.Count(ctx, false)
	if err != nil {
		return err
	}
	failed, err := store.Count(ctx, true)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
	} else {
		writeRuns(out, runs)
	}
	fmt.Fprintf(out, "\n%d runs recorded, %d failed\n", total, failed)
	return nil
}

// failedRuns keeps at most limit runs that did not produce a collage
func failedRuns(runs []history.Run, limit int) []history.Run {
	var out []history.Run
	for _, r := range runs {
		if r.OK() {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// writeRuns prints runs as an aligned table
func writeRuns(w io.Writer, runs []history.Run) {
	fmt.Fprintln(w, formatRow("WHEN", "USER", "PERIOD", "GRID", "SIZE", "RESULT", "DETAIL"))
	for _, r := range runs {
		detail := r.Message
		if r.OK() {
			detail = fmt.Sprintf("%dx%d, %d albums, %s -> %s",
				r.Width, r.Height, r.Images, r.Duration.Round(time.Millisecond), r.Output)
		}
		fmt.Fprintln(w, formatRow(
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			r.Username,
			r.Period,
			r.Dimension,
			r.ImageSize,
			r.Result,
			detail,
		))
	}
}

func formatRow(when, user, period, grid, size, result, detail string) string {
	cols := []string{
		padToWidth(when, colWhen),
		padToWidth(user, colUser),
		padToWidth(period, colPeriod),
		padToWidth(grid, colGrid),
		padToWidth(size, colSize),
		padToWidth(result, colResult),
		detail,
	}
	return strings.TrimRight(strings.Join(cols, "  "), " ")
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Wide runes can leave the result a column short
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		} else if resultWidth > width {
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
