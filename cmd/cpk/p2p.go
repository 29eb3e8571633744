package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/spf13/cobra"

	"cpk/p2p"
)

var p2pCmd = &cobra.Command{
	Use:   "p2p",
	Short: "Probe libp2p peers",
}

var p2pPingCmd = &cobra.Command{
	Use:   "ping address",
	Short: "Ping a peer, the address must end in /p2p/<peer id>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		c := p2p.DefaultPingConfig()
		if c.Count, err = cmd.Flags().GetInt("count"); err != nil {
			return err
		}
		if c.Interval, err = cmd.Flags().GetDuration("interval"); err != nil {
			return err
		}
		if c.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return err
		}

		return p2p.Ping(cmd.Context(), h, args[0], c, func(r p2p.PingResult) {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		})
	},
}

var p2pIdentifyCmd = &cobra.Command{
	Use:   "identify address",
	Short: "Identify a peer, the address must end in /p2p/<peer id>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newHost(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return err
		}
		info, err := p2p.Identify(cmd.Context(), h, args[0], timeout)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}

func newHost(cmd *cobra.Command) (host.Host, error) {
	c := p2p.DefaultHostConfig()
	listen, err := cmd.Flags().GetStringSlice("listen")
	if err != nil {
		return nil, err
	}
	c.ListenAddrs = listen

	h, err := p2p.NewHost(c)
	if err != nil {
		return nil, err
	}
	slog.Debug("Started libp2p host", slog.String("id", h.ID().String()), slog.Any("addrs", h.Addrs()))
	return h, nil
}

func init() {
	p2pCmd.AddCommand(p2pPingCmd)
	p2pCmd.AddCommand(p2pIdentifyCmd)

	p2pCmd.PersistentFlags().StringSlice("listen", p2p.DefaultHostConfig().ListenAddrs, "local listen multiaddrs")
	p2pCmd.PersistentFlags().Duration("timeout", 10*time.Second, "connect and response timeout")
	p2pPingCmd.Flags().Int("count", 5, "number of pings")
	p2pPingCmd.Flags().Duration("interval", time.Second, "delay between pings")
}
