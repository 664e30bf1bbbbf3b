// Package lastfm provides a client library for the Last.fm API 2.0.
//
// # Overview
//
// This package implements a small Go client for the read-only chart
// methods of the Last.fm API. It provides context support, typed errors
// and a standalone XML parser for chart responses.
//
// # Installation
//
//	go get github.com/jfmyers9/collagefm/pkg/lastfm
//
// # Quick Start
//
// Create a client with your API key:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Top Albums
//
//	albums, err := client.User().GetTopAlbums(ctx, lastfm.TopAlbumsParams{
//	    User:   "rj",
//	    Period: lastfm.Period1Month,
//	    Limit:  9,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, ref := range albums.ImageRefs(lastfm.ImageExtraLarge) {
//	    fmt.Println(albums.Albums[ref.AlbumIndex].Name, ref.ImageURL)
//	}
//
// # Wire Format
//
// Parameters (api_key, method and the method arguments) are sent as a
// form-encoded request body. Use EncodeParams to build the same string
// outside of a request.
//
// # Error Handling
//
// The client performs exactly one request per call and never retries.
// Failures are classified:
//
//   - ErrUserNotFound: the API answered 404
//   - *StatusError: any other non-200 status
//   - *NetworkError: the request never completed
//   - *MalformedResponseError: the body is not the expected XML
//   - *Error: a 200 response whose envelope has status="failed"
//
// Example:
//
//	_, err := client.User().GetTopAlbums(ctx, params)
//	var statusErr *lastfm.StatusError
//	switch {
//	case errors.Is(err, lastfm.ErrUserNotFound):
//	    // unknown user
//	case errors.As(err, &statusErr):
//	    // provider-side failure, statusErr.StatusCode
//	}
//
// # Context Support
//
// All API methods accept a context.Context for cancellation and timeouts:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	albums, err := client.User().GetTopAlbums(ctx, params)
//
// # Last.fm API Documentation
//
// https://www.last.fm/api/show/user.getTopAlbums
package lastfm
