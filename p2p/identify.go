package p2p

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/protocol/identify"
)

var ErrIdentifyFailed = errors.New("identify failed")

type IdentifyInfo struct {
	PeerID          peer.ID
	PublicKeyType   string
	ProtocolVersion string
	AgentVersion    string
	ListenAddrs     []string
	Protocols       []string
}

func (i IdentifyInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Peer ID: %s\n", i.PeerID)
	fmt.Fprintf(&sb, "Public Key Type: %s\n", i.PublicKeyType)
	fmt.Fprintf(&sb, "Protocol Version: %s\n", i.ProtocolVersion)
	fmt.Fprintf(&sb, "Agent Version: %s\n", i.AgentVersion)
	sb.WriteString("Listen Addresses:\n")
	for _, a := range i.ListenAddrs {
		fmt.Fprintf(&sb, "  %s\n", a)
	}
	sb.WriteString("Protocols:\n")
	for _, p := range i.Protocols {
		fmt.Fprintf(&sb, "  %s\n", p)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

type idServiceHost interface {
	IDService() identify.IDService
}

// Identify connects to addr and reports what the identify exchange
// taught the peerstore about the peer
func Identify(ctx context.Context, h host.Host, addr string, timeout time.Duration) (IdentifyInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pid, err := connect(ctx, h, addr)
	if err != nil {
		return IdentifyInfo{}, err
	}

	ih, ok := h.(idServiceHost)
	if !ok {
		return IdentifyInfo{}, fmt.Errorf("%w: host has no identify service", ErrIdentifyFailed)
	}
	for _, conn := range h.Network().ConnsToPeer(pid) {
		if err := waitIdentify(ctx, ih.IDService(), conn); err != nil {
			return IdentifyInfo{}, err
		}
	}

	return peerInfo(h, pid)
}

func waitIdentify(ctx context.Context, ids identify.IDService, conn network.Conn) error {
	select {
	case <-ids.IdentifyWait(conn):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrIdentifyFailed, ctx.Err())
	}
}

func peerInfo(h host.Host, pid peer.ID) (IdentifyInfo, error) {
	ps := h.Peerstore()
	info := IdentifyInfo{PeerID: pid}

	agent, err := ps.Get(pid, "AgentVersion")
	if err != nil {
		return IdentifyInfo{}, fmt.Errorf("%w: %s sent no agent version", ErrIdentifyFailed, pid)
	}
	info.AgentVersion, _ = agent.(string)
	if v, err := ps.Get(pid, "ProtocolVersion"); err == nil {
		info.ProtocolVersion, _ = v.(string)
	}

	if pub := ps.PubKey(pid); pub != nil {
		info.PublicKeyType = pub.Type().String()
	}

	for _, a := range ps.Addrs(pid) {
		info.ListenAddrs = append(info.ListenAddrs, a.String())
	}
	slices.Sort(info.ListenAddrs)

	protos, err := ps.GetProtocols(pid)
	if err != nil {
		return IdentifyInfo{}, err
	}
	for _, p := range protos {
		info.Protocols = append(info.Protocols, string(p))
	}
	slices.Sort(info.Protocols)

	return info, nil
}
