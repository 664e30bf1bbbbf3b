package lastfm

import (
	"net/url"
)

// EncodeParams builds a form-encoded parameter string from params.
//
// Keys and values are percent-encoded, pairs are joined with "&" and there
// is no trailing separator. Pairs are sorted by key so the output is
// deterministic; the API itself does not care about ordering.
//
// Example:
//
//	EncodeParams(map[string]string{"user": "a b&c", "limit": "9"})
//	// "limit=9&user=a+b%26c"
func EncodeParams(params map[string]string) string {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// buildParams adds the method and API key to the method-specific params.
func (c *Client) buildParams(method string, params map[string]string) map[string]string {
	reqParams := make(map[string]string, len(params)+2)
	for k, v := range params {
		reqParams[k] = v
	}
	reqParams["method"] = method
	reqParams["api_key"] = c.apiKey
	return reqParams
}
