package dns

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the wire size of a DNS message header: six fixed 16-bit
// fields, always 12 bytes regardless of how many records follow.
const HeaderSize = 12

// Header is the 12-byte preamble of every DNS message (RFC 1035 §4.1.1): a
// transaction ID, the flag bits (see enums.go for their layout), and four
// section counts telling a parser how many Questions/Answers/Authorities/
// Additionals to expect.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// fields returns pointers to h's six uint16s in wire order, so Marshal and
// ParseHeader can share one encode/decode loop instead of repeating six
// hand-written offsets each.
func (h *Header) fields() [6]*uint16 {
	return [6]*uint16{&h.ID, &h.Flags, &h.QDCount, &h.ANCount, &h.NSCount, &h.ARCount}
}

// Marshal serializes the header to its fixed 12-byte big-endian wire form.
func (h Header) Marshal() ([]byte, error) {
	b := make([]byte, HeaderSize)
	for i, f := range h.fields() {
		binary.BigEndian.PutUint16(b[i*2:i*2+2], *f)
	}
	return b, nil
}

// ParseHeader reads a header out of msg starting at *off, advancing *off
// past the 12 bytes it consumes.
func ParseHeader(msg []byte, off *int) (Header, error) {
	if *off+HeaderSize > len(msg) {
		return Header{}, fmt.Errorf("%w: truncated DNS header", ErrDNSError)
	}
	var h Header
	for i, f := range h.fields() {
		*f = binary.BigEndian.Uint16(msg[*off+i*2 : *off+i*2+2])
	}
	*off += HeaderSize
	return h, nil
}
