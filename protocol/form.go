// File: protocol/form.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import "strings"

// ParseForm decodes a key=value&key=value body. Segments without '=' are
// skipped; values are taken verbatim, no URL decoding. Later keys win.
func ParseForm(body []byte) map[string]string {
	params := make(map[string]string)
	if len(body) == 0 {
		return params
	}
	for _, pair := range strings.Split(string(body), "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params[key] = value
	}
	return params
}

// Form returns the decoded form body, empty for methods without a body.
func (r *Request) Form() map[string]string {
	if !r.Method.HasBody() {
		return make(map[string]string)
	}
	return ParseForm(r.Body)
}
