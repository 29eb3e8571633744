package p2p

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/stretchr/testify/require"
)

func newLocalHost(t *testing.T) host.Host {
	h, err := NewHost(HostConfig{ListenAddrs: []string{"/ip4/127.0.0.1/tcp/0"}})
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestPing(t *testing.T) {
	local := newLocalHost(t)
	remote := newLocalHost(t)
	addr := FullAddrs(remote)[0]

	t.Run("count", func(t *testing.T) {
		var results []PingResult
		err := Ping(context.Background(), local, addr, PingConfig{
			Count:    3,
			Interval: 10 * time.Millisecond,
			Timeout:  5 * time.Second,
		}, func(r PingResult) {
			results = append(results, r)
		})
		require.NoError(t, err)
		require.Len(t, results, 3)
		for _, r := range results {
			require.Equal(t, remote.ID(), r.Peer)
			require.True(t, strings.HasPrefix(r.String(), "response from "+remote.ID().String()+" in "))
		}
	})

	t.Run("no peer id", func(t *testing.T) {
		err := Ping(context.Background(), local, remote.Addrs()[0].String(), DefaultPingConfig(), func(PingResult) {})
		require.Error(t, err)
	})

	t.Run("zero count", func(t *testing.T) {
		c := DefaultPingConfig()
		for _, n := range []int{0, -1} {
			c.Count = n
			replies := 0
			err := Ping(context.Background(), local, addr, c, func(PingResult) { replies++ })
			require.Error(t, err)
			require.Zero(t, replies)
		}
	})

	t.Run("bad address", func(t *testing.T) {
		err := Ping(context.Background(), local, "not-an-addr", DefaultPingConfig(), func(PingResult) {})
		require.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		gone := newLocalHost(t)
		gaddr := FullAddrs(gone)[0]
		require.NoError(t, gone.Close())

		c := DefaultPingConfig()
		c.Timeout = time.Second
		err := Ping(context.Background(), local, gaddr, c, func(PingResult) {})
		require.Error(t, err)
	})
}

func TestIdentify(t *testing.T) {
	local := newLocalHost(t)
	remote := newLocalHost(t)

	info, err := Identify(context.Background(), local, FullAddrs(remote)[0], 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, remote.ID(), info.PeerID)
	require.Equal(t, "Ed25519", info.PublicKeyType)
	require.NotEmpty(t, info.AgentVersion)
	require.NotEmpty(t, info.ListenAddrs)
	require.Contains(t, info.Protocols, "/ipfs/ping/1.0.0")
	require.Contains(t, info.String(), "Peer ID: "+remote.ID().String())

	t.Run("again", func(t *testing.T) {
		// Already connected and identified
		again, err := Identify(context.Background(), local, FullAddrs(remote)[0], 5*time.Second)
		require.NoError(t, err)
		require.Equal(t, info.PeerID, again.PeerID)
	})
}

func TestFullAddrs(t *testing.T) {
	h := newLocalHost(t)
	for _, a := range FullAddrs(h) {
		require.True(t, strings.HasSuffix(a, "/p2p/"+h.ID().String()))
	}
}
