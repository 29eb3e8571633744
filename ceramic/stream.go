package ceramic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	mb "github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"

	"cpk"
)

// streamIDCode is the multicodec for ceramic stream identifiers
const streamIDCode = 0xce

var ErrInvalidStreamID = errors.New("invalid stream id")

type StreamType uint64

const (
	TileStream StreamType = iota
	CAIP10Stream
	ModelStream
	DocumentStream
	UnloadableStream
)

var streamTypeNames = map[StreamType]string{
	TileStream:       "tile",
	CAIP10Stream:     "caip10",
	ModelStream:      "model",
	DocumentStream:   "document",
	UnloadableStream: "unloadable",
}

func (t StreamType) String() string {
	if s, ok := streamTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", uint64(t))
}

// ParseStreamType accepts a type name, "mid" is an alias
// for model instance documents
func ParseStreamType(s string) (StreamType, error) {
	s = strings.ToLower(s)
	if s == "mid" {
		return DocumentStream, nil
	}
	for t, name := range streamTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown stream type: %s", s)
}

type StreamID struct {
	Type StreamType
	CID  cid.Cid
}

func RandomStreamID(t StreamType) StreamID {
	return StreamID{Type: t, CID: cpk.RandomCID()}
}

func (id StreamID) Bytes() []byte {
	b := varint.ToUvarint(streamIDCode)
	b = append(b, varint.ToUvarint(uint64(id.Type))...)
	return append(b, id.CID.Bytes()...)
}

// String renders the stream id as base36 multibase
func (id StreamID) String() string {
	s, err := mb.Encode(mb.Base36, id.Bytes())
	if err != nil {
		panic(err)
	}
	return s
}

func (id StreamID) Inspect() string {
	return fmt.Sprintf("StreamID: %s\nType: %s (%d)\nCID: %s",
		id, id.Type, uint64(id.Type), id.CID)
}

func ParseStreamID(s string) (StreamID, error) {
	_, b, err := mb.Decode(strings.TrimSpace(s))
	if err != nil {
		return StreamID{}, fmt.Errorf("%w: %s", ErrInvalidStreamID, err)
	}
	return StreamIDFromBytes(b)
}

func StreamIDFromBytes(b []byte) (StreamID, error) {
	code, n, err := varint.FromUvarint(b)
	if err != nil {
		return StreamID{}, fmt.Errorf("%w: %s", ErrInvalidStreamID, err)
	}
	if code != streamIDCode {
		return StreamID{}, fmt.Errorf("%w: bad prefix 0x%x", ErrInvalidStreamID, code)
	}
	b = b[n:]

	t, n, err := varint.FromUvarint(b)
	if err != nil {
		return StreamID{}, fmt.Errorf("%w: %s", ErrInvalidStreamID, err)
	}
	b = b[n:]

	n, c, err := cid.CidFromBytes(b)
	if err != nil {
		return StreamID{}, fmt.Errorf("%w: %s", ErrInvalidStreamID, err)
	}
	if n != len(b) {
		return StreamID{}, fmt.Errorf("%w: %d trailing bytes", ErrInvalidStreamID, len(b)-n)
	}

	return StreamID{Type: StreamType(t), CID: c}, nil
}
