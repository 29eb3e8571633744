package ipld

import (
	"encoding/hex"
	"testing"

	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

const helloDigest = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestInspectMultihash(t *testing.T) {
	t.Run("sha2-256", func(t *testing.T) {
		b, err := hex.DecodeString("1220" + helloDigest)
		require.NoError(t, err)

		info, err := InspectMultihash(b)
		require.NoError(t, err)
		require.Equal(t, uint64(multihash.SHA2_256), info.Code)
		require.Equal(t, "sha2-256", info.Name)
		require.Equal(t, 32, info.Size)
		require.Equal(t, "Code: 0x12 (sha2-256)\nSize: 32\nDigest(hex): "+helloDigest, info.String())
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := InspectMultihash([]byte{0x12, 0x20, 0x01})
		require.Error(t, err)
	})
}

func TestSumMultihash(t *testing.T) {
	mh, err := SumMultihash([]byte("hello world"), "SHA2-256")
	require.NoError(t, err)
	require.Equal(t, "QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4", mh.B58String())

	_, err = SumMultihash([]byte("hello world"), "nope")
	require.Error(t, err)
}

func TestInspectCID(t *testing.T) {
	t.Run("v0 upgraded", func(t *testing.T) {
		info, err := InspectCID("QmaozNR7DZHQK1ZcU9p7QdrshMvXqWK6gpu5rmrkPdT3L4\n")
		require.NoError(t, err)
		require.Equal(t, uint64(0), info.Version)
		require.Equal(t, "bafybeifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e", info.CID.String())
		require.Equal(t, uint64(0x70), info.Codec)
		require.Equal(t, uint64(0x12), info.HashCode)
		require.Equal(t, helloDigest, hex.EncodeToString(info.Digest))
	})

	t.Run("v1 output", func(t *testing.T) {
		info, err := InspectCID("bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e")
		require.NoError(t, err)
		require.Equal(t, "CID: bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e\n"+
			"Version: V1\n"+
			"Codec: 0x71 (dag-cbor)\n"+
			"Hash Code: 0x12 (sha2-256)\n"+
			"Hash: 0x"+helloDigest, info.String())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := InspectCID("not-a-cid")
		require.Error(t, err)
	})
}

func TestCreateCID(t *testing.T) {
	c, err := CreateCID([]byte("hello world"), "raw", "sha2-256")
	require.NoError(t, err)
	require.Equal(t, "bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e", c.String())

	c, err = CreateCID([]byte("hello world"), "dag-pb", "sha2-256")
	require.NoError(t, err)
	require.Equal(t, "bafybeifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e", c.String())

	_, err = CreateCID(nil, "not-a-codec", "sha2-256")
	require.Error(t, err)
	_, err = CreateCID(nil, "raw", "not-a-hash")
	require.Error(t, err)
}
