// SPDX-License-Identifier: GPL-3.0-or-later

package errkind

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"
	"syscall"
)

// Classifier classifies an arbitrary error into a [Kind].
//
// Implementations are plugged into [Config.ErrClassifier]-shaped fields
// of the connection-establishment package (internal/dial) so tests can
// substitute a deterministic classifier.
type Classifier interface {
	Classify(err error) Kind
}

// ClassifierFunc adapts a function to the [Classifier] interface.
type ClassifierFunc func(error) Kind

var _ Classifier = ClassifierFunc(nil)

// Classify implements [Classifier].
func (f ClassifierFunc) Classify(err error) Kind {
	return f(err)
}

// Default is the [Classifier] used when none is configured.
//
// It recognizes context cancellation/deadline, TLS certificate errors,
// and the platform errno values common to dial/read/write failures,
// falling back to [ConnectFailed] for anything else encountered while
// establishing a connection (the caller narrows further: a failure
// encountered while reading/writing an established exchange should be
// reclassified to [ProtocolError] or left as a raw I/O error per spec.md §7).
var Default = ClassifierFunc(classify)

func classify(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return Cancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	var hostErr x509.HostnameError
	var authErr x509.UnknownAuthorityError
	var certErr x509.CertificateInvalidError
	var recordErr *tls.RecordHeaderError
	if errors.As(err, &hostErr) || errors.As(err, &authErr) ||
		errors.As(err, &certErr) || errors.As(err, &recordErr) {
		return ConnectFailed
	}
	if errno := classifyErrno(err); errno != "" {
		return errno
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return UnknownHost
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ConnectFailed
	}
	return ConnectFailed
}

// classifyErrno maps platform errno values to a [Kind] using the per-OS
// constant tables (errno_unix.go, errno_windows.go).
func classifyErrno(err error) Kind {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		var pathErr *os.SyscallError
		if errors.As(err, &pathErr) {
			if e, ok := pathErr.Err.(syscall.Errno); ok {
				errno = e
			} else {
				return ""
			}
		} else {
			return ""
		}
	}
	switch errno {
	case errECONNREFUSED, errECONNABORTED, errECONNRESET,
		errEHOSTUNREACH, errENETDOWN, errENETUNREACH,
		errEADDRNOTAVAIL, errEADDRINUSE, errENOBUFS,
		errENOTCONN, errEPROTONOSUPPORT:
		return ConnectFailed
	case errETIMEDOUT:
		return Timeout
	case errEINTR, errEINVAL:
		return ConnectFailed
	default:
		return ""
	}
}
