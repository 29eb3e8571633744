package p2p

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/protocol/ping"
)

type PingConfig struct {
	Count    int           `json:"count"`
	Interval time.Duration `json:"interval"`
	Timeout  time.Duration `json:"timeout"`
}

func DefaultPingConfig() PingConfig {
	return PingConfig{
		Count:    5,
		Interval: time.Second,
		Timeout:  10 * time.Second,
	}
}

type PingResult struct {
	Peer peer.ID
	RTT  time.Duration
}

func (r PingResult) String() string {
	return fmt.Sprintf("response from %s in %s", r.Peer, r.RTT)
}

// Ping connects to addr and pings it c.Count times, calling report
// after every response. The first failure stops the pings
func Ping(ctx context.Context, h host.Host, addr string, c PingConfig, report func(PingResult)) error {
	if c.Count <= 0 {
		return fmt.Errorf("ping count must be positive, got %d", c.Count)
	}

	cctx, cancel := context.WithTimeout(ctx, c.Timeout)
	pid, err := connect(cctx, h, addr)
	cancel()
	if err != nil {
		return err
	}

	for i := 0; i < c.Count; i++ {
		if i > 0 && c.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Interval):
			}
		}

		pctx, cancel := context.WithTimeout(ctx, c.Timeout)
		res, ok := <-ping.Ping(pctx, h, pid)
		cancel()
		if !ok {
			return fmt.Errorf("ping %s: %w", pid, pctx.Err())
		}
		if res.Error != nil {
			slog.Debug("Ping failed", slog.String("peer", pid.String()), slog.Any("err", res.Error))
			return fmt.Errorf("ping %s: %w", pid, res.Error)
		}

		report(PingResult{Peer: pid, RTT: res.RTT})
	}

	return nil
}
