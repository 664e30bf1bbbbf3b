package lastfm

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// UserService provides user chart operations for the Last.fm API.
type UserService struct {
	client *Client
}

// GetTopAlbums fetches the most played albums of a user.
//
// Does not require authentication.
//
// Example:
//
//	albums, err := client.User().GetTopAlbums(ctx, lastfm.TopAlbumsParams{
//	    User:   "rj",
//	    Period: lastfm.Period3Month,
//	    Limit:  25,
//	})
//	if errors.Is(err, lastfm.ErrUserNotFound) {
//	    log.Printf("no such user")
//	}
func (s *UserService) GetTopAlbums(ctx context.Context, p TopAlbumsParams) (*TopAlbums, error) {
	if p.User == "" {
		return nil, fmt.Errorf("lastfm: user is required")
	}

	params := map[string]string{
		"user": p.User,
	}
	if p.Period != "" {
		params["period"] = p.Period
	}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Page > 0 {
		params["page"] = strconv.Itoa(p.Page)
	}

	resp, err := s.client.call(ctx, "user.getTopAlbums", params)
	if err != nil {
		return nil, err
	}

	return ParseTopAlbums(resp)
}

// albumXML represents a single <album> element.
type albumXML struct {
	Rank      int    `xml:"rank,attr"`
	Name      string `xml:"name"`
	MBID      string `xml:"mbid"`
	URL       string `xml:"url"`
	PlayCount int    `xml:"playcount"`
	Artist    struct {
		Name string `xml:"name"`
		MBID string `xml:"mbid"`
		URL  string `xml:"url"`
	} `xml:"artist"`
	Images []struct {
		Size string `xml:"size,attr"`
		URL  string `xml:",chardata"`
	} `xml:"image"`
}

// ParseTopAlbums parses a user.getTopAlbums response.
//
// data may be either the full <lfm> document or the inner XML returned by
// the transport. Every <album> element is collected in document order,
// wherever it is nested. A document without albums is not an error; the
// returned TopAlbums simply has no entries.
func ParseTopAlbums(data []byte) (*TopAlbums, error) {
	// Wrap inner XML in root element so fragments decode as one document
	wrapped := make([]byte, 0, len(data)+13)
	wrapped = append(wrapped, "<root>"...)
	wrapped = append(wrapped, stripXMLDecl(data)...)
	wrapped = append(wrapped, "</root>"...)

	dec := xml.NewDecoder(bytes.NewReader(wrapped))
	result := &TopAlbums{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedResponseError{Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "topalbums":
			for _, attr := range start.Attr {
				switch attr.Name.Local {
				case "user":
					result.User = attr.Value
				case "page":
					result.Page, _ = strconv.Atoi(attr.Value)
				case "perPage":
					result.PerPage, _ = strconv.Atoi(attr.Value)
				case "totalPages":
					result.TotalPages, _ = strconv.Atoi(attr.Value)
				case "total":
					result.Total, _ = strconv.Atoi(attr.Value)
				}
			}
		case "album":
			var a albumXML
			if err := dec.DecodeElement(&a, &start); err != nil {
				return nil, &MalformedResponseError{Err: err}
			}
			result.Albums = append(result.Albums, a.toAlbum())
		}
	}

	return result, nil
}

func (a albumXML) toAlbum() Album {
	album := Album{
		Rank:      a.Rank,
		Name:      strings.TrimSpace(a.Name),
		MBID:      strings.TrimSpace(a.MBID),
		URL:       strings.TrimSpace(a.URL),
		PlayCount: a.PlayCount,
		Artist: Artist{
			Name: strings.TrimSpace(a.Artist.Name),
			MBID: strings.TrimSpace(a.Artist.MBID),
			URL:  strings.TrimSpace(a.Artist.URL),
		},
	}
	for _, img := range a.Images {
		album.Images = append(album.Images, Image{
			Size: img.Size,
			URL:  strings.TrimSpace(img.URL),
		})
	}
	return album
}

// stripXMLDecl drops a leading <?xml ...?> declaration, which may not
// appear inside the synthetic root element.
func stripXMLDecl(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return data
	}
	end := bytes.Index(trimmed, []byte("?>"))
	if end < 0 {
		return data
	}
	return trimmed[end+2:]
}

// ImageURL returns the URL of the artwork variant with exactly the given
// size. ok is false when there is no such variant or its URL is empty.
func (a Album) ImageURL(size string) (url string, ok bool) {
	for _, img := range a.Images {
		if img.Size != size {
			continue
		}
		// First matching variant wins, even when empty
		return img.URL, img.URL != ""
	}
	return "", false
}

// ImageRefs returns one reference per album that has artwork at size,
// in chart order. Albums without artwork at that size are skipped.
func (t *TopAlbums) ImageRefs(size string) []AlbumImageRef {
	refs := make([]AlbumImageRef, 0, len(t.Albums))
	for i, album := range t.Albums {
		url, ok := album.ImageURL(size)
		if !ok {
			continue
		}
		refs = append(refs, AlbumImageRef{AlbumIndex: i, ImageURL: url})
	}
	return refs
}
