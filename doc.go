// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpcore implements an OkHttp-style HTTP/1.1 and HTTP/2 client
// core: an ordered interceptor chain (spec.md §4.J) sitting on top of the
// route planner, connection pool, wire codecs, and dispatcher implemented
// by this module's internal packages, plus the public Client/Request/
// Response/Call surface and capability ports (spec.md §6).
package httpcore
