package lastfm

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Base represents the root XML response from Last.fm API.
type Base struct {
	XMLName xml.Name `xml:"lfm"`
	Status  string   `xml:"status,attr"`
	Inner   []byte   `xml:",innerxml"`
}

// APIError represents an error response from the Last.fm API.
type APIError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

const (
	apiStatusOK     = "ok"
	apiStatusFailed = "failed"
)

// call makes a single HTTP request to the Last.fm API.
//
// All parameters travel as form fields in the request body. There is no
// retry: the first failure is returned to the caller, classified as one of
// ErrUserNotFound, *StatusError, *NetworkError, *MalformedResponseError or
// *Error. The response body is fully read and closed before call returns,
// whatever the outcome.
//
// On success the inner XML of the <lfm> envelope is returned.
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	body := EncodeParams(c.buildParams(method, params))

	c.logDebugf("lastfm: calling %s", method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Op: method, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		c.logDebugf("lastfm: %s returned 404", method)
		return nil, ErrUserNotFound
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var base Base
	if err := xml.Unmarshal(data, &base); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	if base.Status == apiStatusFailed {
		var apiErr APIError
		if err := xml.Unmarshal(base.Inner, &apiErr); err != nil {
			return nil, &MalformedResponseError{Err: fmt.Errorf("failed to parse error response: %w", err)}
		}
		return nil, &Error{
			Code:    apiErr.Code,
			Message: strings.TrimSpace(apiErr.Message),
		}
	}

	c.logDebugf("lastfm: %s succeeded (%d bytes)", method, len(data))
	return base.Inner, nil
}
