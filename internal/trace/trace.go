package trace

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain separates trace digests from any other hashed content.
const Domain = "logicflow/trace/v1"

// Event is one line of a trace. Fields must not use the keys "tick" or "type".
type Event struct {
	Tick   int64
	Type   string
	Fields Object
}

// Object returns the event as a single JSON object.
func (e Event) Object() Object {
	obj := make(Object, len(e.Fields)+2)
	for k, v := range e.Fields {
		obj[k] = v
	}
	obj["tick"] = e.Tick
	obj["type"] = e.Type
	return obj
}

// Trace is an ordered list of events.
type Trace []Event

// Marshal encodes the trace as JSON lines: one canonical object per event,
// each terminated by a newline.
func (t Trace) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	for i, e := range t {
		line, err := Marshal(e.Object())
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, e.Type, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Digest returns the hex SHA-256 of the marshaled trace, domain separated:
// SHA256(Domain + 0x00 + data).
func (t Trace) Digest() (string, error) {
	data, err := t.Marshal()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(Domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
