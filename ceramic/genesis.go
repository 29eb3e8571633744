package ceramic

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	cbornode "github.com/ipfs/go-ipld-cbor"
	"github.com/multiformats/go-multihash"

	"cpk"
	"cpk/car"
)

type Stream struct {
	ID      StreamID
	Genesis blocks.Block
}

// CreateStream builds the dag-cbor genesis commit of a new stream.
// Without unique set, two streams of the same type and controller
// share a stream id
func CreateStream(t StreamType, controller string, unique bool) (Stream, error) {
	if controller == "" {
		controller = cpk.RandomString(32)
	}

	header := map[string]interface{}{
		"controllers": []string{controller},
	}
	if unique {
		header["unique"] = base64.StdEncoding.EncodeToString(cpk.RandomBytes(8))
	}

	nd, err := cbornode.WrapObject(map[string]interface{}{"header": header}, multihash.SHA2_256, -1)
	if err != nil {
		return Stream{}, fmt.Errorf("encode genesis commit: %w", err)
	}

	return Stream{
		ID:      StreamID{Type: t, CID: nd.Cid()},
		Genesis: nd,
	}, nil
}

// TipCAR builds the CAR sent with an anchor request. Its root
// block points the stream at tip, then genesis and tip follow
func (s Stream) TipCAR(tip blocks.Block, now time.Time) (cid.Cid, []byte, error) {
	root, err := cbornode.WrapObject(map[string]interface{}{
		"timestamp": now.UTC().Format(time.RFC3339),
		"streamId":  s.ID.Bytes(),
		"tip":       tip.Cid(),
	}, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, nil, fmt.Errorf("encode anchor root: %w", err)
	}

	var buf bytes.Buffer
	if err := car.Write(&buf, []cid.Cid{root.Cid()}, root, s.Genesis, tip); err != nil {
		return cid.Undef, nil, err
	}
	return root.Cid(), buf.Bytes(), nil
}

// CreateStreamCAR creates a stream and the anchor request CAR
// for its genesis commit
func CreateStreamCAR(t StreamType, controller string, unique bool) (cid.Cid, []byte, error) {
	s, err := CreateStream(t, controller, unique)
	if err != nil {
		return cid.Undef, nil, err
	}
	return s.TipCAR(s.Genesis, time.Now())
}
