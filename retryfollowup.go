// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"strings"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/url"
)

// retryAndFollowUp is the first built-in interceptor (spec.md §4.J item
// 1): it proceeds with the chain and, for a redirect or an authentication
// challenge, builds a follow-up request and recurses, up to MaxFollowUps
// follow-up requests. An error from the chain, including a stream refused
// by a GOAWAY, is returned to the caller; no request is retried.
type retryAndFollowUp struct {
	cfg *Config
}

var _ Interceptor = &retryAndFollowUp{}

func (i *retryAndFollowUp) Intercept(chain Chain) (*Response, error) {
	req := chain.Request()
	var priorResponse *Response

	for attempt := 0; ; attempt++ {
		if attempt > i.cfg.MaxFollowUps {
			return nil, errkind.New(errkind.TooManyRedirects, nil)
		}

		resp, err := chain.Proceed(req)
		if err != nil {
			return nil, err
		}
		if priorResponse != nil {
			withPrior := *resp
			withPrior.priorResponse = priorResponse
			resp = &withPrior
		}

		followUp, err := i.followUpRequest(req, resp)
		if err != nil {
			return nil, err
		}
		if followUp == nil {
			return resp, nil
		}

		priorResponse = resp
		req = followUp
	}
}

// followUpRequest returns the next request to send, or (nil, nil) if resp
// is final. It implements spec.md §4.J item 1: 3xx redirect follow-up with
// method-rewrite rules and cross-origin credential stripping, plus
// Authenticator-driven retry on 401/407.
func (i *retryAndFollowUp) followUpRequest(req *Request, resp *Response) (*Request, error) {
	switch {
	case resp.IsRedirect() && i.cfg.FollowRedirects:
		return i.redirectRequest(req, resp)
	case (resp.StatusCode() == 401 || resp.StatusCode() == 407) && i.cfg.Authenticator != nil:
		return i.cfg.Authenticator.Authenticate(nil, resp)
	default:
		return nil, nil
	}
}

func (i *retryAndFollowUp) redirectRequest(req *Request, resp *Response) (*Request, error) {
	location, ok := resp.Header().Get("Location")
	if !ok {
		return nil, nil
	}
	target, err := req.URL().Resolve(location)
	if err != nil {
		return nil, errkind.New(errkind.InvalidUrl, err)
	}
	if !i.cfg.FollowSslRedirects && crossesSchemeDowngrade(req.URL().Scheme(), target.Scheme()) {
		return nil, nil
	}

	b := req.NewBuilder().URL(target)
	method, dropBody := rewriteMethod(resp.StatusCode(), req.Method())
	b.Method(method)
	if dropBody {
		b.body = nil
	}
	if !sameOrigin(req.URL().Host(), target.Host()) {
		b.RemoveHeader("Authorization")
		b.RemoveHeader("Cookie")
		b.RemoveHeader("Proxy-Authorization")
	}
	return b.Build()
}

// rewriteMethod applies OkHttp's redirect method-rewrite table (spec.md
// §4.J item 1): 307/308 preserve method and body; 303 always becomes GET
// with no body; 300-302 rewrite POST to GET and drop the body, leaving
// other methods unchanged.
func rewriteMethod(statusCode int, method string) (newMethod string, dropBody bool) {
	switch statusCode {
	case 307, 308:
		return method, false
	case 303:
		return "GET", true
	default:
		if method == "POST" {
			return "GET", true
		}
		return method, false
	}
}

func sameOrigin(a, b string) bool {
	return strings.EqualFold(a, b)
}

func crossesSchemeDowngrade(from, to url.Scheme) bool {
	return from == "https" && to == "http"
}
