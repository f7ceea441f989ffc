package dns

import (
	"encoding/binary"
	"fmt"
	"net"
)

// fixedRecordFieldsSize is the byte length of a resource record's fixed
// header: type(2) + class(2) + ttl(4) + rdlength(2).
const fixedRecordFieldsSize = 10

// Record is one resource record from an answer, authority, or additional
// section (RFC 1035 §4.1.3). Data carries the already-decoded RDATA, and
// its concrete type depends on rr.Type:
//   - A / AAAA / OPT: raw []byte
//   - CNAME / NS / PTR: string
//   - MX: MXData
//   - TXT: string, []string, or raw []byte
//   - anything else: raw []byte, copied through unmodified
type Record struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  any
}

// MXData is the RDATA of an MX record: a preference value and the mail
// exchange host name.
type MXData struct {
	Preference uint16
	Exchange   string
}

// ParseRecord decodes one resource record from msg at *off, advancing
// *off past it.
func ParseRecord(msg []byte, off *int) (Record, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return Record{}, err
	}
	if *off+fixedRecordFieldsSize > len(msg) {
		return Record{}, fmt.Errorf("%w: truncated resource record", ErrDNSError)
	}

	rrType := binary.BigEndian.Uint16(msg[*off : *off+2])
	rrClass := binary.BigEndian.Uint16(msg[*off+2 : *off+4])
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := int(binary.BigEndian.Uint16(msg[*off+8 : *off+10]))
	*off += fixedRecordFieldsSize

	start := *off
	if start+rdlen > len(msg) {
		return Record{}, fmt.Errorf("%w: resource record rdata runs past message end", ErrDNSError)
	}

	data, err := parseRData(RecordType(rrType), msg, off, start, rdlen)
	if err != nil {
		return Record{}, err
	}
	return Record{Name: name, Type: rrType, Class: rrClass, TTL: ttl, Data: data}, nil
}

// parseRData decodes rdlen bytes of RDATA starting at start, dispatched by
// record type. Name-bearing types advance *off themselves through
// DecodeName (which may itself jump via compression pointers); everything
// else is advanced by exactly rdlen.
func parseRData(rt RecordType, msg []byte, off *int, start, rdlen int) (any, error) {
	switch rt {
	case TypeCNAME, TypeNS, TypePTR:
		name, err := DecodeName(msg, off)
		if err != nil {
			return nil, err
		}
		if *off-start != rdlen {
			return nil, fmt.Errorf("%w: rdlength mismatch decoding name-based record", ErrDNSError)
		}
		return name, nil
	case TypeMX:
		if *off+2 > len(msg) {
			return nil, fmt.Errorf("%w: truncated MX preference", ErrDNSError)
		}
		pref := binary.BigEndian.Uint16(msg[*off : *off+2])
		*off += 2
		exchange, err := DecodeName(msg, off)
		if err != nil {
			return nil, err
		}
		if *off-start != rdlen {
			return nil, fmt.Errorf("%w: rdlength mismatch decoding MX record", ErrDNSError)
		}
		return MXData{Preference: pref, Exchange: exchange}, nil
	default:
		raw := make([]byte, rdlen)
		copy(raw, msg[*off:*off+rdlen])
		*off += rdlen
		return raw, nil
	}
}

// Marshal serializes rr to wire format: name, the ten fixed bytes, then
// type-specific RDATA.
func (rr Record) Marshal() ([]byte, error) {
	nameWire := []byte{0}
	if rr.Type != uint16(TypeOPT) {
		b, err := EncodeName(rr.Name)
		if err != nil {
			return nil, err
		}
		nameWire = b
	}

	rdata, err := rr.marshalRData()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(nameWire)+fixedRecordFieldsSize+len(rdata))
	out = append(out, nameWire...)
	fixed := make([]byte, fixedRecordFieldsSize)
	binary.BigEndian.PutUint16(fixed[0:2], rr.Type)
	binary.BigEndian.PutUint16(fixed[2:4], rr.Class)
	binary.BigEndian.PutUint32(fixed[4:8], rr.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], uint16(len(rdata)))
	out = append(out, fixed...)
	return append(out, rdata...), nil
}

func (rr Record) marshalRData() ([]byte, error) {
	switch RecordType(rr.Type) {
	case TypeA:
		return rr.fixedLengthAddress(4)
	case TypeAAAA:
		return rr.fixedLengthAddress(16)
	case TypeMX:
		mx, ok := rr.Data.(MXData)
		if !ok {
			return nil, fmt.Errorf("%w: MX record data must be MXData", ErrDNSError)
		}
		exchange, err := EncodeName(mx.Exchange)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 2+len(exchange))
		binary.BigEndian.PutUint16(out[0:2], mx.Preference)
		copy(out[2:], exchange)
		return out, nil
	case TypeCNAME, TypeNS, TypePTR:
		s, ok := rr.Data.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: name-based record data must be a non-empty string", ErrDNSError)
		}
		return EncodeName(s)
	case TypeTXT:
		return marshalTXT(rr.Data)
	case TypeOPT:
		if rr.Data == nil {
			return nil, nil
		}
		b, ok := rr.Data.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: OPT record data must be raw bytes", ErrDNSError)
		}
		return b, nil
	default:
		b, ok := rr.Data.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported RR type for serialization: %d", ErrDNSError, rr.Type)
		}
		return b, nil
	}
}

// fixedLengthAddress validates and returns rr.Data for a fixed-width
// address record (A or AAAA).
func (rr Record) fixedLengthAddress(want int) ([]byte, error) {
	b, ok := rr.Data.([]byte)
	if !ok || len(b) != want {
		return nil, fmt.Errorf("%w: record type %d data must be %d bytes", ErrDNSError, rr.Type, want)
	}
	return b, nil
}

func marshalTXT(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return marshalTXTChunk(t), nil
	case []string:
		total := 0
		for _, s := range t {
			total += 1 + len(s)
		}
		out := make([]byte, 0, total)
		for _, s := range t {
			b := []byte(s)
			if len(b) > 255 {
				return nil, fmt.Errorf("%w: TXT character-string cannot exceed 255 bytes", ErrDNSError)
			}
			out = append(out, byte(len(b)))
			out = append(out, b...)
		}
		return out, nil
	case []byte:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: TXT record data must be string, []string, or []byte", ErrDNSError)
	}
}

// marshalTXTChunk encodes s as one or more length-prefixed TXT
// character-strings, splitting at 255-byte boundaries if it's too long
// for a single one.
func marshalTXTChunk(s string) []byte {
	b := []byte(s)
	if len(b) <= 255 {
		out := make([]byte, 1+len(b))
		out[0] = byte(len(b))
		copy(out[1:], b)
		return out
	}

	numChunks := (len(b) + 254) / 255
	out := make([]byte, 0, len(b)+numChunks)
	for i := 0; i < len(b); i += 255 {
		end := i + 255
		if end > len(b) {
			end = len(b)
		}
		chunk := b[i:end]
		out = append(out, byte(len(chunk)))
		out = append(out, chunk...)
	}
	return out
}

// IPv4 returns the dotted-decimal form of an A record's address, and
// false if rr isn't a well-formed A record.
func (rr Record) IPv4() (string, bool) {
	if RecordType(rr.Type) != TypeA {
		return "", false
	}
	b, ok := rr.Data.([]byte)
	if !ok || len(b) != 4 {
		return "", false
	}
	return net.IPv4(b[0], b[1], b[2], b[3]).String(), true
}

// IPv6 returns the text form of an AAAA record's address, and false if rr
// isn't a well-formed AAAA record.
func (rr Record) IPv6() (string, bool) {
	if RecordType(rr.Type) != TypeAAAA {
		return "", false
	}
	b, ok := rr.Data.([]byte)
	if !ok || len(b) != 16 {
		return "", false
	}
	return net.IP(b).String(), true
}
