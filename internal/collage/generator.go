package collage

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/jfmyers9/collagefm/internal/artwork"
	"github.com/jfmyers9/collagefm/pkg/lastfm"
	"github.com/rs/zerolog"
)

// AlbumSource looks up a user's top albums. *lastfm.UserService
// implements it.
type AlbumSource interface {
	GetTopAlbums(ctx context.Context, p lastfm.TopAlbumsParams) (*lastfm.TopAlbums, error)
}

// ImageFetcher downloads and decodes artwork, preserving order.
// *artwork.Fetcher implements it.
type ImageFetcher interface {
	Fetch(ctx context.Context, urls []string) ([]image.Image, error)
}

// Options tunes a Generator.
type Options struct {
	Background     Background    // Fill for empty cells (default black)
	RequestTimeout time.Duration // Bound on the chart request; 0 means caller's context only
}

// Generator runs the whole collage pipeline: map labels, request the
// chart, pick artwork, fetch it and compose the grid.
type Generator struct {
	mapper  *Mapper
	albums  AlbumSource
	images  ImageFetcher
	options Options
	logger  zerolog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(mapper *Mapper, albums AlbumSource, images ImageFetcher, opts Options, logger zerolog.Logger) *Generator {
	return &Generator{
		mapper:  mapper,
		albums:  albums,
		images:  images,
		options: opts,
		logger:  logger.With().Str("component", "collage").Logger(),
	}
}

// Mapper returns the generator's label mapper.
func (g *Generator) Mapper() *Mapper {
	return g.mapper
}

// Generate renders the collage for req.
//
// Every failure is an *Error, except cancellation of ctx which is
// returned as ctx.Err(). No partial collage is ever returned. The run is
// checked for cancellation between stages.
func (g *Generator) Generate(ctx context.Context, req Request) (*Collage, error) {
	start := time.Now()

	params, err := g.mapper.Map(req)
	if err != nil {
		return nil, err
	}

	logger := g.logger.With().
		Str("user", params.Username).
		Str("period", params.Period).
		Int("limit", params.Limit).
		Str("size", params.ImageSize).
		Logger()

	logger.Debug().Msg("Requesting top albums")

	top, err := g.topAlbums(ctx, params)
	if err != nil {
		return nil, classify(ctx, err, params.Username)
	}
	if len(top.Albums) == 0 {
		return nil, &Error{Kind: KindNoRecentPlays, Username: params.Username}
	}

	refs := top.ImageRefs(params.ImageSize)
	logger.Debug().
		Int("albums", len(top.Albums)).
		Int("with_artwork", len(refs)).
		Msg("Parsed top albums")

	if len(refs) == 0 {
		return nil, &Error{Kind: KindNoImagesAvailable, Username: params.Username}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = ref.ImageURL
	}

	images, err := g.images.Fetch(ctx, urls)
	if err != nil {
		return nil, classify(ctx, err, params.Username)
	}
	if len(images) == 0 {
		return nil, &Error{Kind: KindNoImagesAvailable, Username: params.Username}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, err := Compose(images, params.GridDim, g.options.Background.Resolve(images))
	if err != nil {
		// Only reachable when the first artwork decodes to an empty image
		return nil, &Error{Kind: KindImageFetchFailed, URL: urls[0], Err: err}
	}

	logger.Info().
		Int("images", c.Count).
		Int("width", c.Width()).
		Int("height", c.Height()).
		Dur("elapsed", time.Since(start)).
		Msg("Collage generated")

	return c, nil
}

// Result is the outcome of an asynchronous run.
type Result struct {
	Collage *Collage
	Err     error
}

// Start runs Generate on its own goroutine and delivers the outcome on
// the returned channel, which receives exactly one value and is closed.
// Cancel ctx to abandon the run.
func (g *Generator) Start(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		c, err := g.Generate(ctx, req)
		out <- Result{Collage: c, Err: err}
	}()
	return out
}

func (g *Generator) topAlbums(ctx context.Context, params Params) (*lastfm.TopAlbums, error) {
	if g.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.RequestTimeout)
		defer cancel()
	}

	return g.albums.GetTopAlbums(ctx, lastfm.TopAlbumsParams{
		User:   params.Username,
		Period: params.Period,
		Limit:  params.Limit,
	})
}

// classify maps a lower level failure onto a pipeline error kind.
func classify(ctx context.Context, err error, username string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var (
		statusErr    *lastfm.StatusError
		netErr       *lastfm.NetworkError
		malformedErr *lastfm.MalformedResponseError
		apiErr       *lastfm.Error
		fetchErr     *artwork.FetchError
	)

	switch {
	case errors.Is(err, lastfm.ErrUserNotFound):
		return &Error{Kind: KindInvalidUser, Username: username, Err: err}
	case errors.As(err, &statusErr):
		return &Error{Kind: KindRequestFailed, StatusCode: statusErr.StatusCode, Err: err}
	case errors.As(err, &netErr):
		return &Error{Kind: KindNetworkError, Err: netErr.Err}
	case errors.As(err, &malformedErr):
		return &Error{Kind: KindResponseMalformed, Err: malformedErr.Err}
	case errors.As(err, &apiErr):
		return &Error{Kind: KindRequestFailed, StatusCode: 200, Err: err}
	case errors.As(err, &fetchErr):
		return &Error{Kind: KindImageFetchFailed, URL: fetchErr.URL, Err: fetchErr.Err}
	default:
		return &Error{Kind: KindNetworkError, Err: err}
	}
}
