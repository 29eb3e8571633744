package ceramic

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// AnchorRoot is the decoded root block of an anchor request CAR
type AnchorRoot struct {
	Timestamp time.Time
	StreamID  StreamID
	Tip       cid.Cid
}

func ParseAnchorRoot(data []byte) (AnchorRoot, error) {
	nb := basicnode.Prototype.Map.NewBuilder()
	if err := dagcbor.Decode(nb, bytes.NewReader(data)); err != nil {
		return AnchorRoot{}, fmt.Errorf("decode anchor root: %w", err)
	}
	n := nb.Build()

	tsNode, err := n.LookupByString("timestamp")
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root timestamp: %w", err)
	}
	tsStr, err := tsNode.AsString()
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root timestamp: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root timestamp: %w", err)
	}

	idNode, err := n.LookupByString("streamId")
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root stream id: %w", err)
	}
	idBytes, err := idNode.AsBytes()
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root stream id: %w", err)
	}
	id, err := StreamIDFromBytes(idBytes)
	if err != nil {
		return AnchorRoot{}, err
	}

	tipNode, err := n.LookupByString("tip")
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root tip: %w", err)
	}
	tipLink, err := tipNode.AsLink()
	if err != nil {
		return AnchorRoot{}, fmt.Errorf("anchor root tip: %w", err)
	}
	tip, ok := tipLink.(cidlink.Link)
	if !ok {
		return AnchorRoot{}, fmt.Errorf("anchor root tip: unexpected link type %T", tipLink)
	}

	return AnchorRoot{
		Timestamp: ts,
		StreamID:  id,
		Tip:       tip.Cid,
	}, nil
}
