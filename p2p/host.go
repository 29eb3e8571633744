package p2p

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"cpk/ceramic"
)

// Host Config

type HostConfig struct {
	ListenAddrs []string `json:"listen_addrs"`
}

func DefaultHostConfig() HostConfig {
	return HostConfig{
		ListenAddrs: []string{"/ip4/0.0.0.0/tcp/0"},
	}
}

// NewHost starts a libp2p host with a fresh ed25519 identity
func NewHost(c HostConfig) (host.Host, error) {
	_, priv, err := ceramic.GeneratePeerID()
	if err != nil {
		return nil, err
	}

	return libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(c.ListenAddrs...),
	)
}

// connect dials a multiaddr which must end in /p2p/<peer id>
func connect(ctx context.Context, h host.Host, addr string) (peer.ID, error) {
	m, err := ma.NewMultiaddr(addr)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	info, err := peer.AddrInfoFromP2pAddr(m)
	if err != nil {
		return "", fmt.Errorf("address %s: %w", addr, err)
	}

	if err := h.Connect(ctx, *info); err != nil {
		return "", fmt.Errorf("connect to %s: %w", info.ID, err)
	}
	return info.ID, nil
}

// FullAddrs lists the dialable addresses of h including its peer id
func FullAddrs(h host.Host) []string {
	addrs := make([]string, 0, len(h.Addrs()))
	for _, a := range h.Addrs() {
		addrs = append(addrs, fmt.Sprintf("%s/p2p/%s", a, h.ID()))
	}
	return addrs
}
