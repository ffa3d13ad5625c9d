package network

import (
	"net"
	"net/url"
	"syscall"

	"github.com/cockroachdb/errors"
)

// ErrType represents network error type
type ErrType string

const (
	Nil ErrType = "Nil"

	// no such host
	NoSuchHost ErrType = "No such host"

	// http: server gave HTTP response to HTTPS client
	HTTPSClientHTTPServer ErrType = "HTTP response to HTTPS client"

	// connection refused
	Refused ErrType = "Connection refused"

	// context deadline exceeded (Client.Timeout exceeded while awaiting headers)
	Timeout ErrType = "Timeout"

	Unknown ErrType = "Unknown"
)

// GetErrType returns network error type of <err> or any error it wraps
func GetErrType(err error) ErrType {
	if err == nil {
		return Nil
	}
	for ; err != nil; err = errors.UnwrapOnce(err) {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return NoSuchHost
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil &&
			urlErr.Err.Error() == "http: server gave HTTP response to HTTPS client" {
			return HTTPSClientHTTPServer
		}
		if errno, ok := err.(syscall.Errno); ok && errno == syscall.ECONNREFUSED {
			return Refused
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return Timeout
		}
	}
	return Unknown
}

// Describe returns <err> wrapped with its network error type if the type is known
func Describe(err error) error {
	errType := GetErrType(err)
	if errType == Nil || errType == Unknown {
		return err
	}
	return errors.Wrap(err, string(errType))
}
