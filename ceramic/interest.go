package ceramic

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multihash"
)

var ErrInvalidInterest = errors.New("invalid interest")

// Interest advertises which range of event ids a peer wants:
//
//	sort-key(8) peer-id start stop not-after
type Interest []byte

type InterestFields struct {
	SortKey  []byte
	PeerID   peer.ID
	Start    []byte
	Stop     []byte
	NotAfter uint64
}

func (f InterestFields) String() string {
	return fmt.Sprintf("Interest {\n"+
		"    sort_key_hash: %s,\n"+
		"    peer_id: %s,\n"+
		"    range: %s..%s,\n"+
		"    not_after: %d,\n"+
		"}",
		hex.EncodeToString(f.SortKey),
		f.PeerID,
		hex.EncodeToString(f.Start),
		hex.EncodeToString(f.Stop),
		f.NotAfter)
}

func NewInterest(sortKey string, p peer.ID, start, stop []byte, notAfter uint64) (Interest, error) {
	if p == "" {
		return nil, fmt.Errorf("%w: missing peer id", ErrInvalidInterest)
	}

	b := last(sha256Digest(sortKey), 8)
	b = append(b, []byte(p)...)
	// A nil slice would encode as cbor null
	if start == nil {
		start = []byte{}
	}
	if stop == nil {
		stop = []byte{}
	}
	for _, v := range []any{start, stop, notAfter} {
		enc, err := cbor.Marshal(v)
		if err != nil {
			return nil, err
		}
		b = append(b, enc...)
	}
	return b, nil
}

func ParseInterest(s string) (Interest, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterest, err)
	}
	return b, nil
}

func (i Interest) Hex() string {
	return hex.EncodeToString(i)
}

func (i Interest) Decode() (InterestFields, error) {
	b := []byte(i)
	if len(b) < 8 {
		return InterestFields{}, fmt.Errorf("%w: too short", ErrInvalidInterest)
	}
	f := InterestFields{SortKey: b[:8]}
	b = b[8:]

	n, mh, err := multihash.MHFromBytes(b)
	if err != nil {
		return InterestFields{}, fmt.Errorf("%w: peer id: %s", ErrInvalidInterest, err)
	}
	f.PeerID, err = peer.IDFromBytes(mh)
	if err != nil {
		return InterestFields{}, fmt.Errorf("%w: peer id: %s", ErrInvalidInterest, err)
	}
	b = b[n:]

	dec := cbor.NewDecoder(bytes.NewReader(b))
	if f.Start, err = decodeByteString(dec); err != nil {
		return InterestFields{}, fmt.Errorf("%w: range start: %s", ErrInvalidInterest, err)
	}
	if f.Stop, err = decodeByteString(dec); err != nil {
		return InterestFields{}, fmt.Errorf("%w: range stop: %s", ErrInvalidInterest, err)
	}
	if err := dec.Decode(&f.NotAfter); err != nil {
		return InterestFields{}, fmt.Errorf("%w: not after: %s", ErrInvalidInterest, err)
	}
	if dec.NumBytesRead() != len(b) {
		return InterestFields{}, fmt.Errorf("%w: %d trailing bytes", ErrInvalidInterest, len(b)-dec.NumBytesRead())
	}

	return f, nil
}

// cborByteString is the major type of a cbor byte string
const cborByteString = 2

func decodeByteString(dec *cbor.Decoder) ([]byte, error) {
	var raw cbor.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || raw[0]>>5 != cborByteString {
		return nil, fmt.Errorf("expected byte string, got 0x%x", raw)
	}

	var b []byte
	if err := cbor.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return b, nil
}
