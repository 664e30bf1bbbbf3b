// Package collage turns a listener's top albums into a square grid of
// album artwork.
//
// A Generator owns the pipeline:
//
//	labels ─Mapper→ Params ─AlbumSource→ TopAlbums ─ImageRefs→ URLs
//	       ─ImageFetcher→ images ─Compose→ Collage
//
// Requests are expressed in the friendly labels of Tables so that callers
// can persist and restore them without knowing the API vocabulary.
//
// Failures are reported as *Error values carrying a Kind:
//
//	c, err := gen.Generate(ctx, collage.Request{
//	    Username:  "rj",
//	    Period:    "1 Month",
//	    Dimension: "3x3",
//	    ImageSize: "Extra large",
//	})
//	switch {
//	case errors.Is(err, collage.ErrInvalidUser):
//	case errors.Is(err, collage.ErrNoRecentPlays):
//	}
//
// Empty cells are filled with DefaultBackground (opaque black) unless the
// Generator is configured with another Background.
package collage
