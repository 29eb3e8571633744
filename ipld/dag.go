package ipld

import (
	"fmt"
	"io"

	_ "github.com/ceramicnetwork/go-dag-jose/dagjose"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	ipldmc "github.com/ipld/go-ipld-prime/multicodec"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/multiformats/go-multicodec"
)

// Convert decodes r with the from codec into a generic node
// and encodes it to w with the to codec
func Convert(r io.Reader, w io.Writer, from, to multicodec.Code) error {
	dec, err := ipldmc.LookupDecoder(uint64(from))
	if err != nil {
		return fmt.Errorf("no decoder for %s: %w", from, err)
	}
	enc, err := ipldmc.LookupEncoder(uint64(to))
	if err != nil {
		return fmt.Errorf("no encoder for %s: %w", to, err)
	}

	n, err := decode(dec, r)
	if err != nil {
		return fmt.Errorf("decode %s: %w", from, err)
	}
	if err := enc(n, w); err != nil {
		return fmt.Errorf("encode %s: %w", to, err)
	}
	return nil
}

func DagJSONToCBOR(r io.Reader, w io.Writer) error {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagjson.Decode(nb, r); err != nil {
		return fmt.Errorf("decode dag-json: %w", err)
	}
	return dagcbor.Encode(nb.Build(), w)
}

func DagCBORToJSON(r io.Reader, w io.Writer) error {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagcbor.Decode(nb, r); err != nil {
		return fmt.Errorf("decode dag-cbor: %w", err)
	}
	return dagjson.Encode(nb.Build(), w)
}

func DagJOSEToJSON(r io.Reader, w io.Writer) error {
	return Convert(r, w, multicodec.DagJose, multicodec.DagJson)
}

func decode(dec func(datamodel.NodeAssembler, io.Reader) error, r io.Reader) (datamodel.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dec(nb, r); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}
