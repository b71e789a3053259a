package telegram

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyResponse means the transport returned nothing.
	ErrEmptyResponse = errors.New("telegram: response with no data")
	// ErrMalformedResponse means the response body is not valid JSON.
	ErrMalformedResponse = errors.New("telegram: malformed response")
	// ErrAPIRejected means the envelope's ok flag is missing, false or not a boolean.
	ErrAPIRejected = errors.New("telegram: request rejected")
	// ErrEmptyText is returned before any request is built for empty outbound text.
	ErrEmptyText = errors.New("telegram: empty text")
	// ErrEmptyQueryID is returned by EndQuery when no callback query id is given.
	ErrEmptyQueryID = errors.New("telegram: empty callback query id")
)

// APIError carries the details of a rejected request. It matches ErrAPIRejected.
type APIError struct {
	Code        int64
	Description string
	// Raw is the full response, kept for diagnostics.
	Raw string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return ErrAPIRejected.Error()
	}
	return fmt.Sprintf("%s: %d %s", ErrAPIRejected, e.Code, e.Description)
}

func (e *APIError) Unwrap() error { return ErrAPIRejected }

// Guard validates the response envelope and returns the parsed tree.
func Guard(raw string) (gjson.Result, error) {
	if len(raw) == 0 {
		return gjson.Result{}, ErrEmptyResponse
	}
	if !gjson.Valid(raw) {
		return gjson.Result{}, ErrMalformedResponse
	}

	tree := gjson.Parse(raw)
	if tree.Get("ok").Type != gjson.True {
		return tree, &APIError{
			Code:        tree.Get("error_code").Int(),
			Description: tree.Get("description").String(),
			Raw:         raw,
		}
	}
	return tree, nil
}
