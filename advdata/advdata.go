// Package advdata decodes and crafts BLE advertising data payloads.
//
// An advertising payload is a sequence of AD structures: one length byte L
// (the structure occupies L+1 bytes), one type byte, and L-1 data bytes.
package advdata

// Well-known AD structure types.
const (
	TypeFlags              = 0x01
	TypeUUID16Incomplete   = 0x02
	TypeUUID16Complete     = 0x03
	TypeShortenedLocalName = 0x08
	TypeCompleteLocalName  = 0x09
	TypeTxPower            = 0x0A
	TypeServiceData16      = 0x16
	TypeManufacturerData   = 0xFF
)

// Record is a single AD structure extracted from a payload.
type Record struct {
	Type byte
	Data []byte
}

// DecodeLocalName extracts the complete local name (AD type 0x09) from an
// advertising payload. It scans structures sequentially from offset 0 and
// stops at the first zero-length structure or when the next structure would
// read past the end of the payload.
//
// Returns ("", false) when no complete local name is present or the payload
// is malformed. Malformed input never causes a panic.
func DecodeLocalName(payload []byte) (string, bool) {
	i := 0
	for i+1 < len(payload) {
		length := int(payload[i])
		if length == 0 {
			break
		}
		if i+1+length > len(payload) {
			// truncated structure
			return "", false
		}
		if payload[i+1] == TypeCompleteLocalName {
			return string(payload[i+2 : i+1+length]), true
		}
		i += 1 + length
	}
	return "", false
}

// Records splits a payload into its AD structures. Malformed trailing bytes
// are dropped; the records returned are always well-formed.
func Records(payload []byte) []Record {
	var out []Record
	i := 0
	for i+1 < len(payload) {
		length := int(payload[i])
		if length == 0 || i+1+length > len(payload) {
			break
		}
		out = append(out, Record{
			Type: payload[i+1],
			Data: payload[i+2 : i+1+length],
		})
		i += 1 + length
	}
	return out
}

// Builder crafts advertising payloads structure by structure.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty payload builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Append adds one AD structure. Data longer than 254 bytes cannot be encoded
// in a single structure and is silently truncated to fit.
func (b *Builder) Append(typ byte, data []byte) *Builder {
	if len(data) > 0xFE {
		data = data[:0xFE]
	}
	b.buf = append(b.buf, byte(len(data)+1), typ)
	b.buf = append(b.buf, data...)
	return b
}

// AppendLocalName adds a complete local name structure.
func (b *Builder) AppendLocalName(name string) *Builder {
	return b.Append(TypeCompleteLocalName, []byte(name))
}

// Bytes returns the crafted payload.
func (b *Builder) Bytes() []byte {
	return b.buf
}
