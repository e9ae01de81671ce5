// SPDX-License-Identifier: GPL-3.0-or-later

package dial

import "net/netip"

// NewEndpointFunc returns a [Func] that always returns the given
// [netip.AddrPort]. Convenience wrapper around [ConstFunc] for the common
// case of injecting a resolved route endpoint into a dial pipeline.
func NewEndpointFunc(endpoint netip.AddrPort) Func[Unit, netip.AddrPort] {
	return ConstFunc(endpoint)
}
