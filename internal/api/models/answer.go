package models

import "time"

// Answer is the JSON shape of one entry in the GET /universe dump: a flat,
// snake_case record matching the daemon's canonical on-the-wire
// observation.
type Answer struct {
	DomainName string    `json:"domain_name"`
	RecordType string    `json:"record_type"`
	Class      string    `json:"class"`
	TTL        uint32    `json:"ttl"`
	ObservedAt time.Time `json:"observed_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
