// Package answer defines the canonical in-memory record derived from one
// DNS resource record observed on the wire: the unit the rest of the
// daemon schedules, stores, and refreshes.
package answer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cachewarden/cachewarden/internal/dns"
)

// ErrInvalidAnswer is returned by New when an Answer would violate one of
// its invariants.
var ErrInvalidAnswer = errors.New("invalid answer")

// farFutureSentinel caps ExpiresAt so that a pathological TTL can never
// overflow time.Time's internal representation.
var farFutureSentinel = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// RecordType is the daemon's tagged variant over the record kinds the
// refresh scheduler distinguishes. Wire record types outside this set fold
// to Other and remain eligible for refresh, queried with "-t any".
type RecordType int

const (
	TypeA RecordType = iota
	TypeAAAA
	TypeCNAME
	TypeMX
	TypeTXT
	TypeOther
)

// RecordTypeFromWire maps a raw RFC 1035 record type to the daemon's
// six-way tagged variant.
func RecordTypeFromWire(rt dns.RecordType) RecordType {
	switch rt {
	case dns.TypeA:
		return TypeA
	case dns.TypeAAAA:
		return TypeAAAA
	case dns.TypeCNAME:
		return TypeCNAME
	case dns.TypeMX:
		return TypeMX
	case dns.TypeTXT:
		return TypeTXT
	default:
		return TypeOther
	}
}

// String returns the upper-case record type name used in metric labels.
func (t RecordType) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeAAAA:
		return "AAAA"
	case TypeCNAME:
		return "CNAME"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	default:
		return "OTHER"
	}
}

// TypeArg returns the lowercase mnemonic passed to unbound-control/dig
// (spec §4.F): a, aaaa, cname, mx, txt, or any for Other.
func (t RecordType) TypeArg() string {
	switch t {
	case TypeA:
		return "a"
	case TypeAAAA:
		return "aaaa"
	case TypeCNAME:
		return "cname"
	case TypeMX:
		return "mx"
	case TypeTXT:
		return "txt"
	default:
		return "any"
	}
}

// Key identifies the (name, type) pair the Answer Index tracks staleness
// against.
type Key struct {
	Name string
	Type RecordType
}

// Answer is the canonical userspace record (spec §3).
type Answer struct {
	DomainName string
	RecordType RecordType
	Class      dns.RecordClass
	TTL        uint32
	ObservedAt time.Time
	ExpiresAt  time.Time
}

// New constructs an Answer, computing ExpiresAt as ObservedAt+TTL seconds
// and saturating at a far-future sentinel rather than overflowing.
// domainName is canonicalized to lowercase, FQDN (trailing-dot) form, the
// convention unbound-control and dig expect and the one spec §8's
// end-to-end scenarios are written against.
func New(domainName string, recordType RecordType, class dns.RecordClass, ttl uint32, observedAt time.Time) (Answer, error) {
	if domainName == "" {
		return Answer{}, fmt.Errorf("%w: domain_name must be non-empty", ErrInvalidAnswer)
	}

	expiresAt := addSecondsSaturating(observedAt, ttl)
	return Answer{
		DomainName: CanonicalDomainName(domainName),
		RecordType: recordType,
		Class:      class,
		TTL:        ttl,
		ObservedAt: observedAt,
		ExpiresAt:  expiresAt,
	}, nil
}

// CanonicalDomainName lowercases name and ensures it ends with a trailing
// dot (FQDN form).
func CanonicalDomainName(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".") {
		return lower
	}
	return lower + "."
}

func addSecondsSaturating(t time.Time, seconds uint32) time.Time {
	result := t.Add(time.Duration(seconds) * time.Second)
	if result.Before(t) || result.After(farFutureSentinel) {
		return farFutureSentinel
	}
	return result
}

// Key returns the (domain_name, record_type) pair this Answer is tracked
// under in the Answer Index's Latest map.
func (a Answer) Key() Key {
	return Key{Name: a.DomainName, Type: a.RecordType}
}

// Equal reports whether two Answers have identical stored fields.
func (a Answer) Equal(b Answer) bool {
	return a.DomainName == b.DomainName &&
		a.RecordType == b.RecordType &&
		a.Class == b.Class &&
		a.TTL == b.TTL &&
		a.ObservedAt.Equal(b.ObservedAt) &&
		a.ExpiresAt.Equal(b.ExpiresAt)
}

// ExpiresSooner reports whether a expires strictly before b. The Answer
// Index's heap is ordered by this relation so that the soonest-to-expire
// Answer surfaces at the top — equivalent to the spec's "earlier expiry
// sorts as greater" description of a max-heap, implemented here as a
// straightforward min-heap over ExpiresAt.
func (a Answer) ExpiresSooner(b Answer) bool {
	return a.ExpiresAt.Before(b.ExpiresAt)
}
