package protocol

import (
	"bytes"
	"encoding/json"
)

// DecodeResult turns a completed response into a Result.
//
// Statuses outside 200-299 become *HTTPStatusError. A valid JSON body is
// decoded with numbers kept as json.Number; any other body is returned as text.
func DecodeResult(status int, body []byte, method, url string) (Result, error) {
	if status < 200 || status >= 300 {
		return nil, &HTTPStatusError{
			StatusCode: status,
			Body:       string(body),
			Method:     method,
			URL:        url,
		}
	}

	if !json.Valid(body) {
		return string(body), nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		// json.Valid accepted it, so this only happens on exotic input
		return string(body), nil
	}
	return v, nil
}
