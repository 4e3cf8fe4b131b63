// File: protocol/request.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Line-oriented HTTP/1.x request parser. Works on a fully buffered request
// head; never panics on malformed input.

package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/momentics/hioload-httpd/api"
)

// Method is the enumerated request method.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodHead
	MethodPut
	MethodDelete
	MethodTrace
	MethodOptions
	MethodConnect
	MethodPatch
	MethodUnknown
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodHead:    "HEAD",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodTrace:   "TRACE",
	MethodOptions: "OPTIONS",
	MethodConnect: "CONNECT",
	MethodPatch:   "PATCH",
	MethodUnknown: "UNKNOWN",
}

// String returns the method token, "UNKNOWN" for unrecognized methods.
func (m Method) String() string {
	if m < MethodGet || m > MethodUnknown {
		return "UNKNOWN"
	}
	return methodNames[m]
}

// HasBody reports whether requests with this method carry a body.
func (m Method) HasBody() bool {
	return m == MethodPost
}

// ParseMethod maps a request-line token to a Method. Matching is case-sensitive.
func ParseMethod(token string) Method {
	for m, name := range methodNames[:MethodUnknown] {
		if token == name {
			return Method(m)
		}
	}
	return MethodUnknown
}

// ParseState is the parse-progress marker.
type ParseState int

const (
	StateRequestLine ParseState = iota
	StateHeaders
	StateBody
	StateFinish
)

func (s ParseState) String() string {
	switch s {
	case StateRequestLine:
		return "REQUEST_LINE"
	case StateHeaders:
		return "HEADERS"
	case StateBody:
		return "BODY"
	case StateFinish:
		return "FINISH"
	default:
		return "INVALID"
	}
}

// HeaderContentLength is the only header the parser interprets.
const HeaderContentLength = "Content-Length"

// Request is a parsed request.
type Request struct {
	Method  Method
	Path    string
	Version string
	Headers map[string]string
	Body    []byte
	State   ParseState
}

// Header returns the value for name, matched case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// ContentLength returns the declared body length, if any and valid.
func (r *Request) ContentLength() (int, bool) {
	v, ok := r.Header(HeaderContentLength)
	if !ok {
		return 0, false
	}
	return parseContentLength(v)
}

func parseContentLength(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseRequest parses a buffered request. On failure the returned request is
// nil and the error wraps api.ErrMalformedRequest.
func ParseRequest(data []byte) (*Request, error) {
	req := &Request{
		Method:  MethodUnknown,
		Headers: make(map[string]string),
		State:   StateRequestLine,
	}

	rest := data
	lineNo := 0
	for len(rest) > 0 && req.State < StateBody {
		var line []byte
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			line, rest = rest, nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		lineNo++

		switch req.State {
		case StateRequestLine:
			if err := req.parseRequestLine(lineNo, string(line)); err != nil {
				return nil, err
			}
			req.State = StateHeaders
		case StateHeaders:
			if len(line) == 0 {
				req.State = StateBody
				continue
			}
			if err := req.parseHeader(lineNo, string(line)); err != nil {
				return nil, err
			}
		}
	}
	if req.State == StateRequestLine {
		return nil, &api.ProtocolError{Line: 1, Reason: "empty request"}
	}

	if req.Method.HasBody() {
		req.Body = extractBody(data, req)
	}
	req.State = StateFinish
	return req, nil
}

func (r *Request) parseRequestLine(lineNo int, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return &api.ProtocolError{Line: lineNo, Reason: "empty request line"}
	}
	r.Method = ParseMethod(fields[0])
	if len(fields) > 1 {
		r.Path = fields[1]
	}
	if len(fields) > 2 {
		r.Version = fields[2]
	}
	return nil
}

func (r *Request) parseHeader(lineNo int, line string) error {
	key, value, ok := strings.Cut(line, ": ")
	if !ok {
		return &api.ProtocolError{Line: lineNo, Reason: fmt.Sprintf("header without \": \" separator: %q", line)}
	}
	if strings.EqualFold(key, HeaderContentLength) {
		if _, dup := r.Header(HeaderContentLength); dup {
			return &api.ProtocolError{Line: lineNo, Reason: "duplicate Content-Length"}
		}
	}
	r.Headers[key] = value
	return nil
}

// extractBody returns the bytes after the first blank-line separator, cut to
// Content-Length when one is declared.
func extractBody(data []byte, r *Request) []byte {
	start, ok := HeadersComplete(data)
	if !ok {
		return nil
	}
	body := data[start:]
	if n, ok := r.ContentLength(); ok && n < len(body) {
		body = body[:n]
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out
}

// HeadersComplete reports whether buf holds a whole request head and returns
// the offset where the body starts. Lines are split the way ParseRequest splits
// them: the head ends at the first header line that is empty once one trailing
// CR is dropped. A blank request line also ends it, so the parser can reject it.
func HeadersComplete(buf []byte) (bodyStart int, ok bool) {
	off := 0
	for lineNo := 0; ; lineNo++ {
		i := bytes.IndexByte(buf[off:], '\n')
		if i < 0 {
			return 0, false
		}
		line := bytes.TrimSuffix(buf[off:off+i], []byte{'\r'})
		off += i + 1
		if lineNo == 0 {
			if len(bytes.TrimSpace(line)) == 0 {
				return off, true
			}
			continue
		}
		if len(line) == 0 {
			return off, true
		}
	}
}

// DeclaredContentLength scans a buffered request head for Content-Length
// without fully parsing it. Used by the transport to know how much body to wait for.
func DeclaredContentLength(head []byte) (int, bool) {
	lines := bytes.Split(head, []byte{'\n'})
	for _, line := range lines[1:] {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		k, v, ok := bytes.Cut(line, []byte(": "))
		if !ok {
			continue
		}
		if strings.EqualFold(string(k), HeaderContentLength) {
			return parseContentLength(string(v))
		}
	}
	return 0, false
}
