// SPDX-License-Identifier: GPL-3.0-or-later

package h2

import (
	"fmt"

	"github.com/bassosimone/httpcore/errkind"
)

func errkindRefused() error {
	return errkind.New(errkind.Refused, fmt.Errorf("h2: stream beyond GOAWAY last-stream-id"))
}

func errkindStreamReset() error {
	return errkind.New(errkind.StreamReset, fmt.Errorf("h2: stream reset by peer"))
}
