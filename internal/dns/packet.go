package dns

// Limits on how large a preallocation ParsePacket will make from a
// header's section counts, independent of what the header actually
// claims — a reply observer only ever reads these from live traffic, so a
// forged count must never be trusted enough to drive a huge allocation
// before any of those records have been validated.
const (
	MaxQuestions    = 4
	MaxRRPerSection = 100
)

// Packet is a full DNS message (RFC 1035 §4): one header plus four record
// sections. This package only ever decodes replies observed on the wire,
// so Packet is never used to build a query of its own.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// Marshal serializes p to wire format: header first (with its counts
// recomputed from the section lengths), then each section in RFC order.
func (p Packet) Marshal() ([]byte, error) {
	h := Header{
		ID:      p.Header.ID,
		Flags:   p.Header.Flags,
		QDCount: uint16(len(p.Questions)),
		ANCount: uint16(len(p.Answers)),
		NSCount: uint16(len(p.Authorities)),
		ARCount: uint16(len(p.Additionals)),
	}
	hb, err := h.Marshal()
	if err != nil {
		return nil, err
	}

	// Rough per-record size estimate so the appends below rarely reallocate.
	out := make([]byte, 0, HeaderSize+len(p.Questions)*50+(len(p.Answers)+len(p.Authorities)+len(p.Additionals))*100)
	out = append(out, hb...)

	for _, q := range p.Questions {
		b, err := q.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	for _, section := range [][]Record{p.Answers, p.Authorities, p.Additionals} {
		for _, rr := range section {
			b, err := rr.Marshal()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

// allocHint bounds a header-reported count to cap before it's used to
// size a preallocation.
func allocHint(claimed uint16, cap int) int {
	if int(claimed) > cap {
		return cap
	}
	return int(claimed)
}

// parseRecords reads count consecutive resource records from msg at *off.
func parseRecords(msg []byte, off *int, count uint16, cap int) ([]Record, error) {
	out := make([]Record, 0, allocHint(count, cap))
	for range count {
		rr, err := ParseRecord(msg, off)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

// ParsePacket decodes a complete DNS message from msg.
func ParsePacket(msg []byte) (Packet, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Packet{}, err
	}
	p := Packet{Header: h}

	p.Questions = make([]Question, 0, allocHint(h.QDCount, MaxQuestions))
	for range h.QDCount {
		q, err := ParseQuestion(msg, &off)
		if err != nil {
			return Packet{}, err
		}
		p.Questions = append(p.Questions, q)
	}

	if p.Answers, err = parseRecords(msg, &off, h.ANCount, MaxRRPerSection); err != nil {
		return Packet{}, err
	}
	if p.Authorities, err = parseRecords(msg, &off, h.NSCount, MaxRRPerSection); err != nil {
		return Packet{}, err
	}
	if p.Additionals, err = parseRecords(msg, &off, h.ARCount, MaxRRPerSection); err != nil {
		return Packet{}, err
	}
	return p, nil
}
