package ceramic

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
)

func TestStreamID(t *testing.T) {
	c, err := cid.Decode("bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e")
	require.NoError(t, err)
	id := StreamID{Type: ModelStream, CID: c}

	t.Run("bytes", func(t *testing.T) {
		b := id.Bytes()
		require.Equal(t, []byte{0xce, 0x01, 0x02}, b[:3])
		require.Equal(t, c.Bytes(), b[3:])
	})

	t.Run("string round trip", func(t *testing.T) {
		s := id.String()
		require.Equal(t, byte('k'), s[0])

		parsed, err := ParseStreamID(s + "\n")
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("inspect", func(t *testing.T) {
		require.Equal(t, "StreamID: "+id.String()+"\nType: model (2)\nCID: "+c.String(), id.Inspect())
	})

	t.Run("bad prefix", func(t *testing.T) {
		_, err := StreamIDFromBytes(append([]byte{0xcf, 0x01, 0x02}, c.Bytes()...))
		require.ErrorIs(t, err, ErrInvalidStreamID)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := StreamIDFromBytes(append(id.Bytes(), 0x00))
		require.ErrorIs(t, err, ErrInvalidStreamID)
	})

	t.Run("not multibase", func(t *testing.T) {
		_, err := ParseStreamID("?")
		require.ErrorIs(t, err, ErrInvalidStreamID)
	})
}

func TestParseStreamType(t *testing.T) {
	for name, want := range map[string]StreamType{
		"tile":     TileStream,
		"Model":    ModelStream,
		"document": DocumentStream,
		"mid":      DocumentStream,
	} {
		got, err := ParseStreamType(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseStreamType("nope")
	require.Error(t, err)
	require.Equal(t, "unknown(9)", StreamType(9).String())
}

func TestRandomStreamID(t *testing.T) {
	a := RandomStreamID(DocumentStream)
	b := RandomStreamID(DocumentStream)
	require.NotEqual(t, a.String(), b.String())
	require.Equal(t, DocumentStream, a.Type)
}

func TestNetwork(t *testing.T) {
	for _, tc := range []struct {
		name    string
		localID uint32
		id      uint64
	}{
		{"mainnet", 0, 0x00},
		{"testnet-clay", 0, 0x01},
		{"dev-unstable", 0, 0x02},
		{"local", 42, 0x01_0000_002a},
		{"in-memory", 0, 0xff},
	} {
		t.Run(tc.name, func(t *testing.T) {
			n, err := ParseNetwork(tc.name, tc.localID)
			require.NoError(t, err)
			require.Equal(t, tc.id, n.ID())
		})
	}

	_, err := ParseNetwork("moon", 0)
	require.Error(t, err)
}
