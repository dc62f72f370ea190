package transport

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

// Request is a vendor-neutral HTTP request.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   io.Reader
}

// NewRequest creates a Request with an initialized header map.
// body may be nil.
func NewRequest(method, url string, body io.Reader) *Request {
	return &Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
		Body:   body,
	}
}

// NewBytesRequest creates a Request with an in-memory body and a matching
// Content-Length header.
func NewBytesRequest(method, url string, body []byte) *Request {
	req := NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return req
}

// Response is a vendor-neutral HTTP response with a fully buffered body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
