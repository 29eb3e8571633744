package ceramic

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"
)

func TestEventID(t *testing.T) {
	init, err := cid.Decode("bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e")
	require.NoError(t, err)
	event, err := cid.Decode("bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e")
	require.NoError(t, err)

	p := EventIDParams{
		Network:    Network{Kind: TestnetClay},
		SortKey:    "model",
		SortValue:  "kh4q0ozorrgaq2mezktnrmdwleo1d",
		Controller: "did:key:z6MkgSV3tAuw7gUWqKCUY7ae6uWNxqYgdwPhUJbJhF9EFXm9",
		Init:       init,
		Height:     9,
		Event:      event,
	}
	id, err := NewEventID(p)
	require.NoError(t, err)

	t.Run("layout", func(t *testing.T) {
		require.Equal(t, []byte{0xce, 0x01, 0x05, 0x01}, []byte(id[:4]))
		require.Equal(t, last(sha256Digest("model|kh4q0ozorrgaq2mezktnrmdwleo1d"), 8), []byte(id[4:12]))
		require.Equal(t, last(init.Bytes(), 4), []byte(id[20:24]))
		require.Equal(t, byte(0x09), id[24])
		require.Equal(t, event.Bytes(), []byte(id[25:]))
	})

	t.Run("decode", func(t *testing.T) {
		parsed, err := ParseEventID(id.Hex())
		require.NoError(t, err)

		f, err := parsed.Decode()
		require.NoError(t, err)
		require.Equal(t, uint64(1), f.NetworkID)
		require.Equal(t, last(sha256Digest(p.Controller), 8), f.Controller)
		require.Equal(t, uint64(9), f.Height)
		require.Equal(t, event, f.Event)
		require.Contains(t, f.String(), "event_height: 9,")
	})

	t.Run("large height", func(t *testing.T) {
		p := p
		p.Height = 1 << 40
		id, err := NewEventID(p)
		require.NoError(t, err)

		f, err := id.Decode()
		require.NoError(t, err)
		require.Equal(t, uint64(1<<40), f.Height)
		require.Equal(t, event, f.Event)
	})

	t.Run("local network", func(t *testing.T) {
		p := p
		p.Network = Network{Kind: Local, LocalID: 7}
		id, err := NewEventID(p)
		require.NoError(t, err)

		f, err := id.Decode()
		require.NoError(t, err)
		require.Equal(t, uint64(0x01_0000_0007), f.NetworkID)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := id[:20].Decode()
		require.ErrorIs(t, err, ErrInvalidEventID)

		_, err = id[:len(id)-1].Decode()
		require.ErrorIs(t, err, ErrInvalidEventID)
	})

	t.Run("bad hex", func(t *testing.T) {
		_, err := ParseEventID("zz")
		require.ErrorIs(t, err, ErrInvalidEventID)
	})
}

func TestRandomEventID(t *testing.T) {
	a, err := RandomEventID(EventIDParams{Network: Network{Kind: Mainnet}, SortKey: "model"})
	require.NoError(t, err)
	b, err := RandomEventID(EventIDParams{Network: Network{Kind: Mainnet}, SortKey: "model"})
	require.NoError(t, err)
	require.NotEqual(t, a.Hex(), b.Hex())

	f, err := a.Decode()
	require.NoError(t, err)
	require.Equal(t, uint64(0), f.NetworkID)
	require.True(t, f.Event.Defined())
}
