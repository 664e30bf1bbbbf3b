// Package options persists the last-used collage options.
//
// The file holds four friendly labels, never API tokens:
//
//	username=rj
//	period=1 Month
//	dimension=5x5
//	image-size=Extra large
package options

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jfmyers9/collagefm/internal/collage"
	"github.com/rs/zerolog"
)

// FileName is the options file name inside the config directory.
const FileName = "options.properties"

const keyUsername = "username"

// Store loads and saves persisted options.
type Store struct {
	path   string
	tables *collage.Tables
	logger zerolog.Logger
}

// NewStore creates a Store backed by the file at path. Labels are
// validated against tables.
func NewStore(path string, tables *collage.Tables, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		tables: tables,
		logger: logger.With().Str("component", "options").Logger(),
	}
}

// Path returns the options file path.
func (s *Store) Path() string {
	return s.path
}

// Defaults returns a request with an empty username and every option at
// its table's first label.
func (s *Store) Defaults() collage.Request {
	return collage.Request{
		Period:    s.tables.Period.Default(),
		Dimension: s.tables.Dimension.Default(),
		ImageSize: s.tables.ImageSize.Default(),
	}
}

// Load returns the persisted options.
//
// A missing file yields Defaults. A label that is not in its table is
// replaced by the table's default, so Load always returns labels the
// mapper accepts.
func (s *Store) Load() (collage.Request, error) {
	v := newViper()
	v.SetConfigFile(s.path)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.Defaults(), nil
		}
		return s.Defaults(), fmt.Errorf("failed to read options: %w", err)
	}

	return collage.Request{
		Username:  v.GetString(keyUsername),
		Period:    s.normalize(collage.OptionPeriod, s.tables.Period, v.GetString(collage.OptionPeriod)),
		Dimension: s.normalize(collage.OptionDimension, s.tables.Dimension, v.GetString(collage.OptionDimension)),
		ImageSize: s.normalize(collage.OptionImageSize, s.tables.ImageSize, v.GetString(collage.OptionImageSize)),
	}, nil
}

// Save writes req's labels to the options file, creating its directory.
func (s *Store) Save(req collage.Request) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create options directory: %w", err)
	}

	v := newViper()
	v.Set(keyUsername, req.Username)
	v.Set(collage.OptionPeriod, req.Period)
	v.Set(collage.OptionDimension, req.Dimension)
	v.Set(collage.OptionImageSize, req.ImageSize)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Msg("Saved options")
	return nil
}

func (s *Store) normalize(option string, table collage.Table, label string) string {
	if _, ok := table.Lookup(label); ok {
		return label
	}
	if label != "" {
		s.logger.Warn().
			Str("option", option).
			Str("label", label).
			Msg("Ignoring unknown persisted option")
	}
	return table.Default()
}
