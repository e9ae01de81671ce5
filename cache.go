// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"time"

	"github.com/bassosimone/httpcore/errkind"
)

// cache is the third built-in interceptor (spec.md §4.J item 3): given a
// [CacheStore] it computes a strategy pairing an optional network request
// with an optional cached response, serves from cache, revalidates
// conditionally, or fails with UnsatisfiableRequest on an only-if-cached
// miss, then decides whether to store the eventual response.
type cache struct {
	cfg *Config
}

var _ Interceptor = &cache{}

// cacheStrategy is the (networkRequest, cachedResponse) pair spec.md §4.J
// item 3 describes. Either or both may be set; both nil means an
// only-if-cached request could not be satisfied from the cache.
type cacheStrategy struct {
	networkRequest  *Request
	cachedResponse  *Response
}

func (i *cache) Intercept(chain Chain) (*Response, error) {
	req := chain.Request()
	if i.cfg.CacheStore == nil {
		return chain.Proceed(req)
	}

	strategy := i.computeStrategy(req)

	if strategy.networkRequest == nil && strategy.cachedResponse == nil {
		return nil, errkind.New(errkind.UnsatisfiableRequest, nil)
	}
	if strategy.networkRequest == nil {
		return strategy.cachedResponse, nil
	}
	if strategy.cachedResponse == nil {
		resp, err := chain.Proceed(strategy.networkRequest)
		if err != nil {
			return nil, err
		}
		return i.maybeStore(resp), nil
	}

	revalidated := i.revalidationRequest(strategy.networkRequest, strategy.cachedResponse)
	networkResponse, err := chain.Proceed(revalidated)
	if err != nil {
		// A failed revalidation attempt on a stale-while-offline cached
		// entry still serves the cache (spec.md §4.C): network errors
		// never invalidate what is already stored.
		return strategy.cachedResponse, nil
	}
	if networkResponse.StatusCode() == 304 {
		merged := mergeNotModified(strategy.cachedResponse, networkResponse)
		i.cfg.CacheStore.Update(merged)
		return merged, nil
	}
	return i.maybeStore(networkResponse), nil
}

// computeStrategy implements spec.md §4.J item 3's cache lookup: a
// no-store request bypasses the cache entirely; a no-cache request with a
// cached entry revalidates it; otherwise a fresh cached entry is served
// directly, a stale one is revalidated, and only-if-cached with nothing
// usable cached yields no strategy at all.
func (i *cache) computeStrategy(req *Request) cacheStrategy {
	reqCC := req.CacheControl()
	cached, hit := i.cfg.CacheStore.Get(req)

	if reqCC.NoStore {
		return cacheStrategy{networkRequest: req}
	}
	if !hit {
		if reqCC.OnlyIfCached {
			return cacheStrategy{}
		}
		return cacheStrategy{networkRequest: req}
	}
	if reqCC.NoCache {
		return cacheStrategy{networkRequest: req, cachedResponse: cached}
	}
	if i.isFresh(cached, reqCC.MinFreshSeconds) {
		return cacheStrategy{cachedResponse: cached}
	}
	if reqCC.OnlyIfCached {
		return cacheStrategy{}
	}
	return cacheStrategy{networkRequest: req, cachedResponse: cached}
}

func (i *cache) isFresh(cached *Response, minFreshSeconds int32) bool {
	respCC := cached.CacheControl()
	if respCC.NoCache {
		return false
	}
	maxAge := respCC.MaxAgeSeconds
	if maxAge < 0 {
		return false
	}
	age := i.cfg.TimeNow().Sub(cached.ReceivedResponseAt())
	freshFor := time.Duration(maxAge) * time.Second
	if minFreshSeconds > 0 {
		freshFor -= time.Duration(minFreshSeconds) * time.Second
	}
	return age < freshFor
}

// revalidationRequest merges the cached response's validators into a
// conditional GET per RFC 7234: If-None-Match from ETag, If-Modified-Since
// from Last-Modified (or Date as a fallback).
func (i *cache) revalidationRequest(req *Request, cached *Response) *Request {
	b := req.NewBuilder()
	if etag, ok := cached.Header().Get("ETag"); ok {
		b.SetHeader("If-None-Match", etag)
	}
	if lastModified, ok := cached.Header().Get("Last-Modified"); ok {
		b.SetHeader("If-Modified-Since", lastModified)
	} else if date, ok := cached.Header().Get("Date"); ok {
		b.SetHeader("If-Modified-Since", date)
	}
	out, err := b.Build()
	if err != nil {
		return req
	}
	return out
}

// mergeNotModified copies the cached response's body while taking the
// revalidation response's headers for any header present on it, per RFC
// 7234 §4.3.4.
func mergeNotModified(cached, revalidation *Response) *Response {
	merged := *cached
	hb := cached.Header().NewBuilder()
	for i := 0; i < revalidation.Header().Len(); i++ {
		hb.Set(revalidation.Header().Name(i), revalidation.Header().Value(i))
	}
	merged.header = hb.Build()
	merged.receivedResponseAt = revalidation.ReceivedResponseAt()
	return &merged
}

func (i *cache) maybeStore(resp *Response) *Response {
	cc := resp.CacheControl()
	if resp.Request() != nil && resp.Request().Method() == "GET" && resp.IsSuccessful() && !cc.NoStore {
		i.cfg.CacheStore.Put(resp)
	}
	return resp
}
