package ceramic

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-varint"

	"cpk"
)

// eventIDCode marks the bytes after the stream id prefix
// as an event id
const eventIDCode = 0x05

var ErrInvalidEventID = errors.New("invalid event id")

// EventID orders events for set reconciliation:
//
//	0xce 0x05 network sort-value(8) controller(8) init(4) height event-cid
type EventID []byte

type EventIDParams struct {
	Network    Network
	SortKey    string
	SortValue  string
	Controller string
	Init       cid.Cid
	Height     uint64
	Event      cid.Cid
}

func NewEventID(p EventIDParams) (EventID, error) {
	height, err := cbor.Marshal(p.Height)
	if err != nil {
		return nil, fmt.Errorf("encode event height: %w", err)
	}

	b := varint.ToUvarint(streamIDCode)
	b = append(b, varint.ToUvarint(eventIDCode)...)
	b = append(b, varint.ToUvarint(p.Network.ID())...)
	b = append(b, last(sha256Digest(p.SortKey+"|"+p.SortValue), 8)...)
	b = append(b, last(sha256Digest(p.Controller), 8)...)
	b = append(b, last(p.Init.Bytes(), 4)...)
	b = append(b, height...)
	b = append(b, p.Event.Bytes()...)
	return b, nil
}

func ParseEventID(s string) (EventID, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEventID, err)
	}
	return b, nil
}

func (e EventID) Hex() string {
	return hex.EncodeToString(e)
}

type EventIDFields struct {
	NetworkID  uint64
	SortValue  []byte
	Controller []byte
	Init       []byte
	Height     uint64
	Event      cid.Cid
}

func (f EventIDFields) String() string {
	return fmt.Sprintf("EventId {\n"+
		"    network_id: %d,\n"+
		"    separator: %s,\n"+
		"    controller: %s,\n"+
		"    stream_id: %s,\n"+
		"    event_height: %d,\n"+
		"    cid: %s,\n"+
		"}",
		f.NetworkID,
		hex.EncodeToString(f.SortValue),
		hex.EncodeToString(f.Controller),
		hex.EncodeToString(f.Init),
		f.Height,
		f.Event)
}

// Decode splits the event id back into its fields
func (e EventID) Decode() (EventIDFields, error) {
	b := []byte(e)
	f := EventIDFields{}

	for _, want := range []uint64{streamIDCode, eventIDCode} {
		v, n, err := varint.FromUvarint(b)
		if err != nil {
			return EventIDFields{}, fmt.Errorf("%w: %s", ErrInvalidEventID, err)
		}
		if v != want {
			return EventIDFields{}, fmt.Errorf("%w: expected 0x%x got 0x%x", ErrInvalidEventID, want, v)
		}
		b = b[n:]
	}

	networkID, n, err := varint.FromUvarint(b)
	if err != nil {
		return EventIDFields{}, fmt.Errorf("%w: network id: %s", ErrInvalidEventID, err)
	}
	f.NetworkID = networkID
	b = b[n:]

	if len(b) < 8+8+4 {
		return EventIDFields{}, fmt.Errorf("%w: too short", ErrInvalidEventID)
	}
	f.SortValue, b = b[:8], b[8:]
	f.Controller, b = b[:8], b[8:]
	f.Init, b = b[:4], b[4:]

	dec := cbor.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&f.Height); err != nil {
		return EventIDFields{}, fmt.Errorf("%w: event height: %s", ErrInvalidEventID, err)
	}
	b = b[dec.NumBytesRead():]

	n, c, err := cid.CidFromBytes(b)
	if err != nil {
		return EventIDFields{}, fmt.Errorf("%w: event cid: %s", ErrInvalidEventID, err)
	}
	if n != len(b) {
		return EventIDFields{}, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEventID, len(b)-n)
	}
	f.Event = c

	return f, nil
}

// RandomEventID fills in every unset parameter with random
// values, as used to generate test data
func RandomEventID(p EventIDParams) (EventID, error) {
	if p.SortKey == "" {
		p.SortKey = cpk.RandomString(12)
	}
	if p.SortValue == "" {
		p.SortValue = RandomStreamID(ModelStream).String()
	}
	if p.Controller == "" {
		p.Controller = cpk.RandomString(32)
	}
	if !p.Init.Defined() {
		p.Init = RandomStreamID(ModelStream).CID
	}
	if p.Height == 0 {
		p.Height = uint64(cpk.RandomUint32())
	}
	if !p.Event.Defined() {
		p.Event = cpk.RandomCID()
	}
	return NewEventID(p)
}

func sha256Digest(s string) []byte {
	h := sha256.Sum256([]byte(s))
	return h[:]
}

func last(b []byte, n int) []byte {
	if len(b) < n {
		out := make([]byte, n)
		copy(out[n-len(b):], b)
		return out
	}
	return b[len(b)-n:]
}
