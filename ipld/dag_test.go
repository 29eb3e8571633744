package ipld

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestDagJSONToCBOR(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, DagJSONToCBOR(strings.NewReader(`{"a":1}`), &out))
		require.Equal(t, "a1616101", hex.EncodeToString(out.Bytes()))
	})

	t.Run("keys sorted", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, DagJSONToCBOR(strings.NewReader(`{"bb":true,"a":null}`), &out))
		require.Equal(t, "a26161f6626262f5", hex.EncodeToString(out.Bytes()))
	})

	t.Run("invalid json", func(t *testing.T) {
		require.Error(t, DagJSONToCBOR(strings.NewReader(`{"a":`), &bytes.Buffer{}))
	})
}

func TestDagCBORToJSON(t *testing.T) {
	t.Run("round trip link", func(t *testing.T) {
		in := `{"link":{"/":"bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"},"n":[1,2]}`

		var cbor bytes.Buffer
		require.NoError(t, DagJSONToCBOR(strings.NewReader(in), &cbor))

		var out bytes.Buffer
		require.NoError(t, DagCBORToJSON(&cbor, &out))
		require.Equal(t, `{"n":[1,2],"link":{"/":"bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"}}`, out.String())
	})

	t.Run("invalid cbor", func(t *testing.T) {
		require.Error(t, DagCBORToJSON(bytes.NewReader([]byte{0xa1}), &bytes.Buffer{}))
	})
}

func TestDagJOSEToJSON(t *testing.T) {
	t.Run("jws", func(t *testing.T) {
		mh, err := multihash.Sum([]byte("payload"), multihash.SHA2_256, -1)
		require.NoError(t, err)
		link := cid.NewCidV1(cid.DagCBOR, mh)

		n, err := qp.BuildMap(basicnode.Prototype.Any, 2, func(ma datamodel.MapAssembler) {
			qp.MapEntry(ma, "payload", qp.Bytes(link.Bytes()))
			qp.MapEntry(ma, "signatures", qp.List(1, func(la datamodel.ListAssembler) {
				qp.ListEntry(la, qp.Map(2, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "protected", qp.Bytes([]byte(`{"alg":"EdDSA"}`)))
					qp.MapEntry(ma, "signature", qp.Bytes([]byte{0x01, 0x02, 0x03}))
				}))
			}))
		})
		require.NoError(t, err)

		var in bytes.Buffer
		require.NoError(t, dagcbor.Encode(n, &in))

		var out bytes.Buffer
		require.NoError(t, DagJOSEToJSON(&in, &out))
		require.Contains(t, out.String(), `"link":{"/":"`+link.String()+`"}`)
		require.Contains(t, out.String(), `"payload":"`+base64.RawURLEncoding.EncodeToString(link.Bytes())+`"`)
		require.Contains(t, out.String(), `"signature":"AQID"`)
	})

	t.Run("invalid", func(t *testing.T) {
		require.Error(t, DagJOSEToJSON(bytes.NewReader([]byte{0x01, 0x02}), &bytes.Buffer{}))
	})
}
