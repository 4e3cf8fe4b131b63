// File: protocol/response.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Response model and HTTP/1.1 byte serialization. Every response closes the
// connection; no chunked encoding.

package protocol

import (
	"bytes"
	"sort"
	"strconv"
)

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)

var statusText = map[int]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusInternalServerError: "Internal Server Error",
	StatusServiceUnavailable:  "Service Unavailable",
}

// StatusText returns the reason phrase for code, "Unknown" if not in the table.
func StatusText(code int) string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return "Unknown"
}

// Response is what a handler produces.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// NewResponse builds a text/plain response.
func NewResponse(code int, body string) *Response {
	return &Response{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       []byte(body),
	}
}

// OK is a 200 response with body.
func OK(body string) *Response { return NewResponse(StatusOK, body) }

// Error is an error response carrying code and body.
func Error(code int, body string) *Response { return NewResponse(code, body) }

// NotFound is the router's fallback response.
func NotFound() *Response { return NewResponse(StatusNotFound, StatusText(StatusNotFound)) }

// BadRequest is sent best-effort when a request cannot be parsed.
func BadRequest() *Response { return NewResponse(StatusBadRequest, StatusText(StatusBadRequest)) }

// SetHeader sets a response header, replacing any previous value.
func (r *Response) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}

// Bytes serializes the response: status line, sorted headers,
// Content-Length and Connection: close, blank line, body.
func (r *Response) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(64 + len(r.Body))

	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(r.StatusCode))
	b.WriteByte(' ')
	b.WriteString(StatusText(r.StatusCode))
	b.WriteString("\r\n")

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		if k == HeaderContentLength || k == "Connection" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeHeader(&b, k, r.Headers[k])
	}
	writeHeader(&b, HeaderContentLength, strconv.Itoa(len(r.Body)))
	writeHeader(&b, "Connection", "close")
	b.WriteString("\r\n")
	b.Write(r.Body)
	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, k, v string) {
	b.WriteString(k)
	b.WriteString(": ")
	b.WriteString(v)
	b.WriteString("\r\n")
}
