package client

import (
	"encoding/json"
	"fmt"

	"github.com/sagarc03/gsutil/transport"
)

// Decoder turns a successful response into a typed result.
type Decoder[T any] func(resp *transport.Response) (T, error)

// JSON decodes the body as a JSON document of type T.
func JSON[T any]() Decoder[T] {
	return func(resp *transport.Response) (T, error) {
		var v T
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return v, fmt.Errorf("decode response: %w", err)
		}
		return v, nil
	}
}

// Bytes returns the raw body.
func Bytes() Decoder[[]byte] {
	return func(resp *transport.Response) ([]byte, error) {
		return resp.Body, nil
	}
}

// Discard ignores the body.
func Discard() Decoder[struct{}] {
	return func(*transport.Response) (struct{}, error) {
		return struct{}{}, nil
	}
}
