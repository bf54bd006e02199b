package azsql

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorKind classifies errors raised at the transport boundary.
// The retry loop reacts only to KindTransient; every other kind
// surfaces immediately.
type ErrorKind int

const (
	// KindUnknown is an unclassified transport error.
	KindUnknown ErrorKind = iota

	// KindTransient is a temporary transport failure. Retryable.
	KindTransient

	// KindAuth is a rejected credential or token. Never retried.
	KindAuth

	// KindInvalid is a malformed request or configuration. Programmer
	// error, never retried.
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// TransportError wraps an error from the transport driver with its kind.
type TransportError struct {
	Kind ErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transport error the connect loop
// may retry.
func IsTransient(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindTransient
}

// authPatterns are fragments of server responses that indicate a rejected
// credential rather than a network fault.
var authPatterns = []string{
	"login failed",
	"login error",
	"authentication failed",
	"token is expired",
	"not authorized",
}

// invalidPatterns indicate a malformed DSN or request that no amount of
// retrying will fix.
var invalidPatterns = []string{
	"invalid connection string",
	"unable to parse",
	"unsupported key",
}

// classifyConnectError assigns a kind to an error raised while dialing.
// Auth and configuration failures are fatal; everything else that happens
// during connection establishment is treated as a transient transport
// fault, since that is the class the retry budget exists for.
func classifyConnectError(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	msg := strings.ToLower(err.Error())
	for _, p := range authPatterns {
		if strings.Contains(msg, p) {
			return KindAuth
		}
	}
	for _, p := range invalidPatterns {
		if strings.Contains(msg, p) {
			return KindInvalid
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindTransient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindTransient
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return KindTransient
	}

	return KindTransient
}
