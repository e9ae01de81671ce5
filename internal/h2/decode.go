// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"fmt"
	"strconv"

	"github.com/bassosimone/httpcore/headers"
	"golang.org/x/net/http2/hpack"
)

// DecodedHeaders is the result of HPACK-decoding one HEADERS(+CONTINUATION)
// block: pseudo-headers (":status" for responses) split from the regular
// header list.
type DecodedHeaders struct {
	Status  int
	Regular *headers.List
}

// DecodeResponseHeaders HPACK-decodes block into a status code and regular
// header list. Every call uses the session's single [hpack.Decoder], so
// dynamic table updates carry over from one header block to the next, as
// RFC 7541 requires.
func (s *Session) DecodeResponseHeaders(block []byte) (DecodedHeaders, error) {
	b := headers.NewBuilder()
	out := DecodedHeaders{}

	s.writeMu.Lock()
	dec := s.hpackDec
	s.writeMu.Unlock()

	var decodeErr error
	dec.SetEmitFunc(func(f hpack.HeaderField) {
		if f.Name == ":status" {
			if code, err := strconv.Atoi(f.Value); err == nil {
				out.Status = code
			} else {
				decodeErr = fmt.Errorf("h2: malformed :status value %q", f.Value)
			}
			return
		}
		if len(f.Name) > 0 && f.Name[0] == ':' {
			return // other pseudo-headers ignored on responses
		}
		b = b.AddUnchecked(f.Name, f.Value)
	})
	if _, err := dec.Write(block); err != nil {
		return DecodedHeaders{}, err
	}
	if decodeErr != nil {
		return DecodedHeaders{}, decodeErr
	}
	out.Regular = b.Build()
	return out, nil
}
