// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"compress/gzip"
	"fmt"
	"io"
	"strconv"

	"github.com/bassosimone/httpcore/headers"
)

// bridgeHeaders is the second built-in interceptor (spec.md §4.J item 2):
// it bridges a user-facing [Request] to its wire-ready form (Host,
// Connection, Accept-Encoding, User-Agent, cookies) and transparently
// reverses transport-level framing (gzip) on the way back, so later
// interceptors and the caller never see it.
type bridgeHeaders struct {
	cfg *Config
}

var _ Interceptor = &bridgeHeaders{}

func (i *bridgeHeaders) Intercept(chain Chain) (*Response, error) {
	userRequest := chain.Request()
	b := userRequest.NewBuilder()

	hb := b.header
	i.setDefaultIfAbsent(userRequest, hb, "Host", hostHeaderValue(userRequest))
	i.setDefaultIfAbsent(userRequest, hb, "Connection", "Keep-Alive")

	transparentGzip := false
	if _, ok := userRequest.Header().Get("Accept-Encoding"); !ok {
		if _, ok := userRequest.Header().Get("Range"); !ok {
			transparentGzip = true
			hb.Set("Accept-Encoding", "gzip")
		}
	}

	if i.cfg.CookieJar != nil {
		for _, v := range i.cfg.CookieJar.LoadForRequest(userRequest.URL().String()) {
			hb.Add("Cookie", v)
		}
	}
	i.setDefaultIfAbsent(userRequest, hb, "User-Agent", i.cfg.UserAgent)

	if body := userRequest.Body(); body != nil {
		if n := body.ContentLength(); n >= 0 {
			hb.Set("Content-Length", strconv.FormatInt(n, 10))
		} else {
			hb.Set("Transfer-Encoding", "chunked")
		}
		if mt := body.ContentType(); mt != nil {
			hb.Set("Content-Type", mt.String())
		}
	}

	networkRequest, err := b.Build()
	if err != nil {
		return nil, err
	}

	networkResponse, err := chain.Proceed(networkRequest)
	if err != nil {
		return nil, err
	}

	if i.cfg.CookieJar != nil {
		if cookies := networkResponse.Header().Values("Set-Cookie"); len(cookies) > 0 {
			i.cfg.CookieJar.SaveFromResponse(userRequest.URL().String(), cookies)
		}
	}

	resp := *networkResponse
	resp.request = userRequest
	resp.networkResponse = networkResponse

	if transparentGzip && headerHasToken(networkResponse.Header(), "Content-Encoding", "gzip") && resp.body != nil {
		resp.header = stripTransportHeaders(networkResponse.Header())
		resp.body = NewResponseBody(resp.body.ContentType(), -1, &gzipBody{source: resp.body}, i.cfg.Logger, i.cfg.TimeNow)
	}
	return &resp, nil
}

func (i *bridgeHeaders) setDefaultIfAbsent(original *Request, b *headers.Builder, name, value string) {
	if value == "" || original.Header().Has(name) {
		return
	}
	b.Set(name, value)
}

func hostHeaderValue(req *Request) string {
	u := req.URL()
	if u.IsDefaultPort() {
		return u.Host()
	}
	return fmt.Sprintf("%s:%d", u.Host(), u.Port())
}

func headerHasToken(h *headers.List, name, token string) bool {
	v, ok := h.Get(name)
	return ok && v == token
}

// stripTransportHeaders removes the Content-Encoding/Content-Length
// headers a decompressed body invalidates.
func stripTransportHeaders(h *headers.List) *headers.List {
	b := h.NewBuilder()
	b.Remove("Content-Encoding")
	b.Remove("Content-Length")
	return b.Build()
}

// gzipBody lazily wraps a gzip.Reader around source, decompressing on
// first read.
type gzipBody struct {
	source *ResponseBody
	gz     *gzip.Reader
}

func (g *gzipBody) Read(p []byte) (int, error) {
	if g.gz == nil {
		gz, err := gzip.NewReader(g.source)
		if err != nil {
			return 0, err
		}
		g.gz = gz
	}
	return g.gz.Read(p)
}

func (g *gzipBody) Close() error {
	if g.gz != nil {
		g.gz.Close()
	}
	return g.source.Close()
}

var _ io.ReadCloser = &gzipBody{}
