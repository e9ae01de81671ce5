// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnsadapter implements the [route.Dns] capability (spec.md §6)
// over github.com/miekg/dns, querying A and AAAA records against one or
// more configured nameservers and merging the results. It mirrors the
// teacher's DNS exchange wrappers (DNSOverUDPConn/DNSOverTCPConn): one
// struct holding the transport plus a Logger/TimeNow pair, with
// structured start/done logging bracketing each network round trip.
package dnsadapter

import (
	"log/slog"
	"time"

	"github.com/miekg/dns"

	"github.com/bassosimone/httpcore/errkind"
	"github.com/bassosimone/httpcore/slogx"
)

// Config holds a [*Resolver]'s dependencies. All fields default via
// [NewConfig].
type Config struct {
	// Servers are the nameserver addresses ("host:port") queried in
	// order until one answers; the first to return any records wins.
	Servers []string

	// Timeout bounds a single exchange against one server.
	Timeout time.Duration

	// TimeNow returns the current time, for log timestamps.
	TimeNow func() time.Time
}

// NewConfig returns a [*Config] defaulting to Google's public resolvers.
func NewConfig() *Config {
	return &Config{
		Servers: []string{"8.8.8.8:53", "8.8.4.4:53"},
		Timeout: 4 * time.Second,
		TimeNow: time.Now,
	}
}

// Resolver implements the [route.Dns] capability port (spec.md §6:
// "Lookup(host string) ([]string, error)") by issuing A and AAAA queries
// over UDP via [*dns.Client], falling back across Config.Servers.
type Resolver struct {
	cfg    *Config
	client *dns.Client
	logger slogx.SLogger
}

// New returns a [*Resolver]. cfg defaults to [NewConfig] when nil.
func New(cfg *Config, logger slogx.SLogger) *Resolver {
	if cfg == nil {
		cfg = NewConfig()
	}
	if logger == nil {
		logger = slogx.Default()
	}
	return &Resolver{
		cfg:    cfg,
		client: &dns.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Lookup resolves host to its A and AAAA addresses, trying each
// configured server in turn and returning the first non-empty result.
func (r *Resolver) Lookup(host string) ([]string, error) {
	var lastErr error
	for _, server := range r.cfg.Servers {
		addrs, err := r.exchangeAll(host, server)
		if err != nil {
			lastErr = err
			continue
		}
		if len(addrs) > 0 {
			return addrs, nil
		}
	}
	if lastErr == nil {
		lastErr = errkind.Newf(errkind.UnknownHost, "dnsadapter: %q has no A/AAAA records", host)
	}
	return nil, errkind.New(errkind.UnknownHost, lastErr)
}

// exchangeAll queries both record types against server and merges the
// addresses found, logging one dnsExchangeStart/dnsExchangeDone pair per
// query.
func (r *Resolver) exchangeAll(host, server string) ([]string, error) {
	var out []string
	var lastErr error
	for _, qtype := range [...]uint16{dns.TypeA, dns.TypeAAAA} {
		addrs, err := r.exchangeOne(host, server, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		out = append(out, addrs...)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (r *Resolver) exchangeOne(host, server string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	t0 := r.cfg.TimeNow()
	r.logger.Info(
		"dnsExchangeStart",
		slog.String("host", host),
		slog.String("server", server),
		slog.Uint64("qtype", uint64(qtype)),
		slog.Time("t", t0),
	)

	resp, rtt, err := r.client.Exchange(m, server)

	r.logger.Info(
		"dnsExchangeDone",
		slog.String("host", host),
		slog.String("server", server),
		slog.Any("err", err),
		slog.Duration("rtt", rtt),
		slog.Time("t0", t0),
		slog.Time("t", r.cfg.TimeNow()),
	)

	if err != nil {
		return nil, errkind.New(errkind.UnknownHost, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, errkind.Newf(errkind.UnknownHost, "dnsadapter: %q: rcode %s", host, dns.RcodeToString[resp.Rcode])
	}

	var addrs []string
	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			addrs = append(addrs, rec.A.String())
		case *dns.AAAA:
			addrs = append(addrs, rec.AAAA.String())
		}
	}
	return addrs, nil
}
