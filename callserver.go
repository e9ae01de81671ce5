// SPDX-License-Identifier: GPL-3.0-or-later

package httpcore

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/headers"
	"github.com/bassosimone/httpcore/internal/exchange"
)

// callServer is the last built-in interceptor (spec.md §4.J item 6): it
// writes request headers, streams the request body, reads the response
// headers, and attaches the response body source, driving the Exchange
// [connectInterceptor] bound to the call. It never calls proceed.
type callServer struct {
	cfg *Config
}

var _ Interceptor = &callServer{}

func (i *callServer) Intercept(chain Chain) (*Response, error) {
	req := chain.Request()
	call := chain.Call()

	ex, ok := call.currentExchange()
	if !ok {
		return nil, fmt.Errorf("httpcore: callServer invoked without a live Exchange")
	}

	t0 := i.cfg.TimeNow()
	i.cfg.Logger.Info("httpRoundTripStart", slog.String("method", req.Method()), slog.String("url", req.URL().String()), slog.Time("t", t0))

	exReq := &exchange.Request{
		Method:        req.Method(),
		URL:           req.URL(),
		Header:        req.Header(),
		ContentLength: bodyContentLength(req.Body()),
	}

	expectContinue := headerHasToken(req.Header(), "Expect", "100-continue")

	if err := ex.WriteRequestHeaders(exReq); err != nil {
		i.logRoundTripDone(t0, 0, err)
		return nil, classifyIOError(err)
	}

	var bodyBytes int64
	if body := req.Body(); body != nil {
		sink, err := ex.CreateRequestBody(exReq, body.IsDuplex())
		if err != nil {
			i.logRoundTripDone(t0, 0, err)
			return nil, classifyIOError(err)
		}
		counting := &countingWriter{w: sink}
		if err := body.WriteTo(counting); err != nil {
			sink.Close()
			i.logRoundTripDone(t0, counting.n, err)
			return nil, classifyIOError(err)
		}
		if err := sink.Close(); err != nil {
			i.logRoundTripDone(t0, counting.n, err)
			return nil, classifyIOError(err)
		}
		bodyBytes = counting.n
	}

	if err := ex.FinishRequest(); err != nil {
		i.logRoundTripDone(t0, bodyBytes, err)
		return nil, classifyIOError(err)
	}

	exResp, err := ex.ReadResponseHeaders(expectContinue)
	if err != nil {
		i.logRoundTripDone(t0, bodyBytes, err)
		return nil, err
	}

	source, err := ex.OpenResponseBodySource(exResp)
	if err != nil {
		i.logRoundTripDone(t0, bodyBytes, err)
		return nil, classifyIOError(err)
	}

	receivedAt := i.cfg.TimeNow()
	i.logRoundTripDone(t0, bodyBytes, nil)

	resp, err := NewResponseBuilder(req).
		StatusCode(exResp.StatusCode).
		Reason(statusReason(exResp.StatusCode)).
		Protocol(exResp.Proto).
		Header(exResp.Header).
		Body(NewResponseBody(contentType(exResp.Header), declaredContentLength(exResp.Header), source, i.cfg.Logger, i.cfg.TimeNow)).
		SentRequestAt(t0).
		ReceivedResponseAt(receivedAt).
		Build()
	if err != nil {
		source.Close()
		return nil, err
	}
	return resp, nil
}

func (i *callServer) logRoundTripDone(t0 time.Time, byteCount int64, err error) {
	i.cfg.Logger.Info(
		"httpRoundTripDone",
		slog.Any("err", err),
		slog.Int64("requestBodyBytes", byteCount),
		slog.Time("t0", t0),
		slog.Time("t", i.cfg.TimeNow()),
	)
}

func bodyContentLength(body RequestBody) int64 {
	if body == nil {
		return 0
	}
	return body.ContentLength()
}

func declaredContentLength(h *headers.List) int64 {
	v, ok := h.Get("Content-Length")
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// classifyIOError wraps a raw I/O error from the exchange as a
// ProtocolError, unless it is already a classified [*errkind.Error].
func classifyIOError(err error) error {
	if err == nil {
		return nil
	}
	if errkind.KindOf(err) != "" {
		return err
	}
	return errkind.New(errkind.ProtocolError, err)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var statusReasons = map[int]string{
	200: "OK", 201: "Created", 204: "No Content",
	301: "Moved Permanently", 302: "Found", 303: "See Other", 304: "Not Modified", 307: "Temporary Redirect", 308: "Permanent Redirect",
	400: "Bad Request", 401: "Unauthorized", 403: "Forbidden", 404: "Not Found", 407: "Proxy Authentication Required",
	500: "Internal Server Error", 502: "Bad Gateway", 503: "Service Unavailable",
}

func statusReason(code int) string {
	if r, ok := statusReasons[code]; ok {
		return r
	}
	return ""
}
