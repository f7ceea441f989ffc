// Package dns provides RFC 1035 wire-format parsing for DNS reply messages
// captured off the wire. It intentionally only covers what a reply observer
// needs: header, question, and answer record decoding for A, AAAA, CNAME,
// MX, and TXT records. Query validation and response construction are out
// of scope; this package never originates a DNS message of its own.
//
// All errors are wrapped with context using fmt.Errorf("...: %w", err),
// preserving the error chain while adding operational context.
package dns

import "errors"

var (
	// ErrDNSError is a sentinel error type for DNS protocol violations.
	// Wrap this with fmt.Errorf("context: %w", ErrDNSError) to add context.
	ErrDNSError = errors.New("dns wire error")
)
