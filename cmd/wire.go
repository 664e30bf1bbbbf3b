package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jfmyers9/collagefm/internal/artwork"
	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/jfmyers9/collagefm/internal/config"
	"github.com/jfmyers9/collagefm/internal/history"
	"github.com/jfmyers9/collagefm/internal/options"
	"github.com/jfmyers9/collagefm/pkg/lastfm"
	"github.com/rs/zerolog"
)

// components holds everything a command needs to run the pipeline
type components struct {
	cfg       *config.Config
	logger    zerolog.Logger
	tables    *collage.Tables
	generator *collage.Generator
	options   *options.Store
	history   *history.Store
}

// Close releases the history database
func (c *components) Close() {
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to close history")
		}
	}
}

// buildComponents loads configuration and wires the pipeline.
// A history database that cannot be opened is logged and skipped.
func buildComponents(cfg *config.Config, background string, timeout time.Duration) (*components, error) {
	logger := setupLogger(logFile, logLevel)

	if cfg.LastFM.APIKey == "" {
		return nil, fmt.Errorf("Last.fm API key not configured. Run 'collagefm setup', set lastfm.api_key in %s or export COLLAGEFM_LASTFM_API_KEY",
			filepath.Join(config.GetConfigDir(), "config.yaml"))
	}

	if background == "" {
		background = cfg.Background
	}
	bg, err := collage.ParseBackground(background)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:    cfg.LastFM.APIKey,
		BaseURL:   cfg.LastFM.BaseURL,
		Timeout:   timeout,
		UserAgent: "collagefm/" + version,
		Logger:    lastfmLogger{logger: logger.With().Str("component", "lastfm").Logger()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	fetcher := artwork.NewFetcher(artwork.Config{
		Timeout:     timeout,
		Concurrency: cfg.FetchConcurrency,
		UserAgent:   "collagefm/" + version,
	}, logger)

	tables := collage.DefaultTables()
	generator := collage.NewGenerator(
		collage.NewMapper(tables),
		client.User(),
		fetcher,
		collage.Options{Background: bg, RequestTimeout: timeout},
		logger,
	)

	c := &components{
		cfg:       cfg,
		logger:    logger,
		tables:    tables,
		generator: generator,
		options:   newOptionsStore(tables, logger),
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Warn().Err(err).Msg("Failed to create data directory, history disabled")
		return c, nil
	}
	store, err := history.NewStore(filepath.Join(cfg.DataDir, history.FileName))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open history, history disabled")
		return c, nil
	}
	c.history = store

	return c, nil
}

func newOptionsStore(tables *collage.Tables, logger zerolog.Logger) *options.Store {
	return options.NewStore(filepath.Join(config.GetConfigDir(), options.FileName), tables, logger)
}

// lastfmLogger adapts zerolog to the lastfm.Logger interface
type lastfmLogger struct {
	logger zerolog.Logger
}

func (l lastfmLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

type runRecorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// recorder returns the history store, or a nil interface when history is
// disabled so callers can test it against nil.
func (c *components) recorder() runRecorder {
	if c.history == nil {
		return nil
	}
	return c.history
}
