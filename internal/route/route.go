// SPDX-License-Identifier: GPL-3.0-or-later

package route

import (
	"fmt"
	"net/netip"
)

// Route uniquely identifies one concrete dial target: an [Address], the
// [Proxy] hop used to reach it, and the resolved socket address
// (spec.md §4.E, §9 glossary).
type Route struct {
	Address       *Address
	Proxy         *Proxy
	SocketAddress netip.AddrPort
}

// Key returns a string that uniquely identifies this route for the
// failed-route history tracked per call.
func (r *Route) Key() string {
	return fmt.Sprintf("%s|%s|%s", r.Address.Key(), r.Proxy.String(), r.SocketAddress.String())
}
