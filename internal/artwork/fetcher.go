package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp" // WebP decoder registration
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of images fetched at once.
const DefaultConcurrency = 4

// maxImageBytes caps a single artwork download.
const maxImageBytes = 16 << 20

// FetchError reports the artwork URL that failed and why.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("artwork: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config holds fetcher configuration.
type Config struct {
	HTTPClient  *http.Client  // Optional: defaults to a client with Timeout
	Timeout     time.Duration // Optional: per-image timeout (default 30s)
	Concurrency int           // Optional: parallel fetches (default DefaultConcurrency)
	UserAgent   string        // Optional: User-Agent header
}

// Fetcher downloads and decodes album artwork.
type Fetcher struct {
	client      *http.Client
	concurrency int
	userAgent   string
	logger      zerolog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg Config, logger zerolog.Logger) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "collagefm/1.0"
	}

	return &Fetcher{
		client:      client,
		concurrency: concurrency,
		userAgent:   userAgent,
		logger:      logger.With().Str("component", "artwork").Logger(),
	}
}

// Fetch downloads and decodes every URL.
//
// Result i is the image of urls[i] regardless of completion order. The
// first failure cancels the remaining downloads and is returned as a
// *FetchError; no partial result is returned.
func (f *Fetcher) Fetch(ctx context.Context, urls []string) ([]image.Image, error) {
	images := make([]image.Image, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			img, err := f.fetchOne(gctx, u)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Cancellation by the caller wins over the first fetch failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	f.logger.Debug().Int("count", len(images)).Msg("Fetched artwork")
	return images, nil
}

// fetchOne downloads and decodes a single image.
func (f *Fetcher) fetchOne(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if len(data) > maxImageBytes {
		return nil, &FetchError{URL: url, Err: errors.New("image too large")}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("decode: %w", err)}
	}

	f.logger.Debug().
		Str("url", url).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Decoded artwork")

	return img, nil
}
