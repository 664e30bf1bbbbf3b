package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/jfmyers9/collagefm/internal/config"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/spf13/cobra"
)

var (
	genUser       string
	genPeriod     string
	genDimension  string
	genImageSize  string
	genOutput     string
	genBackground string
	genTimeout    time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a collage of a user's top albums",
	Long: `Fetch a Last.fm user's top albums for a period and write their artwork
as a square grid image.

Options not given on the command line are taken from the last successful
run, then from the defaults (Week, 3x3, Small). The options used are saved
after every successful run.

The output format follows the file extension: .jpg and .jpeg are written
as JPEG, anything else as PNG.

Examples:
  collagefm generate -u rj
  collagefm generate -u rj -p "1 Year" -d 5x5 -s "Extra large" -o rj.jpg
  collagefm generate -u rj --background dominant`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genUser, "user", "u", "", "Last.fm username")
	generateCmd.Flags().StringVarP(&genPeriod, "period", "p", "", "Period: Week, 1 Month, 3 Months, 6 Months, 1 Year")
	generateCmd.Flags().StringVarP(&genDimension, "dimension", "d", "", "Grid: 3x3, 5x5, 10x10")
	generateCmd.Flags().StringVarP(&genImageSize, "image-size", "s", "", "Artwork size: Small, Medium, Large, Extra large")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default from config: collage.png)")
	generateCmd.Flags().StringVar(&genBackground, "background", "", "Empty cell fill: black, white, dominant or #rrggbb")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 0, "Request timeout (default from config: 30s)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := buildComponents(cfg, genBackground, genTimeout)
	if err != nil {
		return err
	}
	defer c.Close()

	persisted, err := c.options.Load()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to load saved options, using defaults")
	}
	req := mergeRequest(persisted, collage.Request{
		Username:  genUser,
		Period:    genPeriod,
		Dimension: genDimension,
		ImageSize: genImageSize,
	})

	output := genOutput
	if output == "" {
		output = cfg.Output
	}

	// Ctrl-C cancels the run
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := c.generator.Generate(ctx, req)
	if err == nil {
		err = collage.WriteFile(output, result.Image)
	}
	elapsed := time.Since(start)

	if c.history != nil {
		if _, rerr := c.history.Record(context.Background(), history.NewRun(req, result, err, output, elapsed)); rerr != nil {
			c.logger.Warn().Err(rerr).Msg("Failed to record run")
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("canceled")
		}
		return errors.New(collage.Present(err))
	}

	if err := c.options.Save(req); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to save options")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %dx%d collage of %d albums to %s\n",
		result.Width(), result.Height(), result.Count, output)
	return nil
}

// mergeRequest overlays the non-empty fields of flags on persisted
func mergeRequest(persisted, flags collage.Request) collage.Request {
	req := persisted
	if flags.Username != "" {
		req.Username = flags.Username
	}
	if flags.Period != "" {
		req.Period = flags.Period
	}
	if flags.Dimension != "" {
		req.Dimension = flags.Dimension
	}
	if flags.ImageSize != "" {
		req.ImageSize = flags.ImageSize
	}
	return req
}
