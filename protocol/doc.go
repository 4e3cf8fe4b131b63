// File: protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package protocol implements the wire format served by hioload-httpd: a
// subset of HTTP/1.1 with a request-line/header/body state machine,
// form-urlencoded bodies without URL decoding, and close-delimited responses.
package protocol
