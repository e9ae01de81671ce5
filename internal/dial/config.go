// SPDX-License-Identifier: GPL-3.0-or-later

package dial

import (
	"net"
	"time"

	"github.com/bassosimone/httpcore/errkind"
)

// Config holds common configuration for dial pipeline stages.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig].
type Config struct {
	// Dialer is used by [*ConnectFunc].
	//
	// Set by [NewConfig] to [*net.Dialer].
	Dialer Dialer

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [errkind.Default].
	ErrClassifier errkind.Classifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Dialer:        &net.Dialer{},
		ErrClassifier: errkind.Default,
		TimeNow:       time.Now,
	}
}
