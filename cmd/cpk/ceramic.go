package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/spf13/cobra"

	"cpk"
	"cpk/ceramic"
)

var streamIDCmd = &cobra.Command{
	Use:   "stream-id",
	Short: "Create, generate and inspect stream IDs",
}

var streamIDCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a stream ID from its type and init CID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := streamType(cmd)
		if err != nil {
			return err
		}
		s, err := cmd.Flags().GetString("cid")
		if err != nil {
			return err
		}
		c, err := cid.Decode(s)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ceramic.StreamID{Type: t, CID: c})
		return nil
	},
}

var streamIDInspectCmd = &cobra.Command{
	Use:   "inspect [id]",
	Short: "Inspect a stream ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cmd.Flags().GetString("id")
		if err != nil {
			return err
		}
		if s == "" {
			if s, err = argOrStdin(cmd, args); err != nil {
				return err
			}
		}

		id, err := ceramic.ParseStreamID(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.Inspect())
		return nil
	},
}

var streamIDGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random stream ID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := streamType(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ceramic.RandomStreamID(t))
		return nil
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Create streams",
}

var streamCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a stream and print its anchor request CAR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := streamType(cmd)
		if err != nil {
			return err
		}
		controller, err := cmd.Flags().GetString("controller")
		if err != nil {
			return err
		}
		unique, err := cmd.Flags().GetBool("unique")
		if err != nil {
			return err
		}

		s, err := ceramic.CreateStream(t, controller, unique)
		if err != nil {
			return err
		}
		root, data, err := s.TipCAR(s.Genesis, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "stream %s root %s\n", s.ID, root)
		return writeMaybeMultibase(cmd, data)
	},
}

func streamType(cmd *cobra.Command) (ceramic.StreamType, error) {
	s, err := cmd.Flags().GetString("type")
	if err != nil {
		return 0, err
	}
	return ceramic.ParseStreamType(s)
}

var eventIDCmd = &cobra.Command{
	Use:   "event-id",
	Short: "Generate and decode event IDs",
}

var eventIDGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an event ID, unset fields are random",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := eventIDParams(cmd)
		if err != nil {
			return err
		}
		count, err := cmd.Flags().GetUint("count")
		if err != nil {
			return err
		}

		for i := uint(0); i < count; i++ {
			id, err := ceramic.RandomEventID(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Hex())
		}
		return nil
	},
}

var eventIDDecodeCmd = &cobra.Command{
	Use:   "decode [hex]",
	Short: "Decode a hex event ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := argOrStdin(cmd, args)
		if err != nil {
			return err
		}
		id, err := ceramic.ParseEventID(s)
		if err != nil {
			return err
		}
		f, err := id.Decode()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), f)
		return nil
	},
}

// eventIDParams reads the event id flags shared by event-id
// generate and sql-db generate
func eventIDParams(cmd *cobra.Command) (ceramic.EventIDParams, error) {
	var p ceramic.EventIDParams
	flags := cmd.Flags()

	name, err := flags.GetString("network")
	if err != nil {
		return p, err
	}
	localID, err := flags.GetUint32("local-id")
	if err != nil {
		return p, err
	}
	if !flags.Changed("local-id") {
		localID = cpk.RandomUint32()
	}
	if p.Network, err = ceramic.ParseNetwork(name, localID); err != nil {
		return p, err
	}

	if p.SortKey, err = flags.GetString("sort-key"); err != nil {
		return p, err
	}
	if p.SortValue, err = flags.GetString("sort-value"); err != nil {
		return p, err
	}
	if p.Controller, err = flags.GetString("controller"); err != nil {
		return p, err
	}

	if p.Height, err = flags.GetUint64("height"); err != nil {
		return p, err
	}

	initID, err := flags.GetString("init-id")
	if err != nil {
		return p, err
	}
	if initID != "" {
		id, err := ceramic.ParseStreamID(initID)
		if err != nil {
			return p, err
		}
		p.Init = id.CID
	}

	return p, nil
}

func addEventIDFlags(cmd *cobra.Command, sortKey string) {
	cmd.Flags().String("network", "testnet-clay", "network (mainnet, testnet-clay, dev-unstable, local, in-memory)")
	cmd.Flags().Uint32("local-id", 0, "local network id, random if unset")
	cmd.Flags().String("sort-key", sortKey, "sort key, random if empty")
	cmd.Flags().String("sort-value", "", "sort value, random if unset")
	cmd.Flags().String("controller", "", "controller, random if unset")
	cmd.Flags().String("init-id", "", "stream ID of the init event, random if unset")
	cmd.Flags().Uint64("height", 0, "event height, random if zero")
}

var interestCmd = &cobra.Command{
	Use:   "interest",
	Short: "Create and decode interests",
}

var interestCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an interest in a range of event IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		sortKey, err := flags.GetString("sort-key")
		if err != nil {
			return err
		}
		pidStr, err := flags.GetString("peer-id")
		if err != nil {
			return err
		}
		startHex, err := flags.GetString("start")
		if err != nil {
			return err
		}
		stopHex, err := flags.GetString("stop")
		if err != nil {
			return err
		}
		notAfter, err := flags.GetUint64("not-after")
		if err != nil {
			return err
		}

		var pid peer.ID
		if pidStr == "" {
			if pid, _, err = ceramic.GeneratePeerID(); err != nil {
				return err
			}
		} else if pid, err = peer.Decode(pidStr); err != nil {
			return err
		}
		start, err := hex.DecodeString(startHex)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		stop, err := hex.DecodeString(stopHex)
		if err != nil {
			return fmt.Errorf("stop: %w", err)
		}

		i, err := ceramic.NewInterest(sortKey, pid, start, stop, notAfter)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i.Hex())
		return nil
	},
}

var interestDecodeCmd = &cobra.Command{
	Use:   "decode [hex]",
	Short: "Decode a hex interest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := argOrStdin(cmd, args)
		if err != nil {
			return err
		}
		i, err := ceramic.ParseInterest(s)
		if err != nil {
			return err
		}
		f, err := i.Decode()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), f)
		return nil
	},
}

var didKeyCmd = &cobra.Command{
	Use:   "did-key",
	Short: "Generate did:key identifiers",
}

var didKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random did:key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		did, priv, err := ceramic.GenerateDIDKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), did)

		showKey, err := cmd.Flags().GetBool("private-key")
		if err != nil {
			return err
		}
		if showKey {
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(priv.Seed()))
		}
		return nil
	},
}

var peerIDCmd = &cobra.Command{
	Use:   "peer-id",
	Short: "Generate and derive libp2p peer IDs",
}

var peerIDGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an ed25519 peer ID and its marshalled private key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, priv, err := ceramic.GeneratePeerID()
		if err != nil {
			return err
		}
		b, err := crypto.MarshalPrivateKey(priv)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", pid, hex.EncodeToString(b))
		return nil
	},
}

var peerIDFromKeyCmd = &cobra.Command{
	Use:   "from-key",
	Short: "Derive the peer ID of a marshalled private key on stdin, raw or hex",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readStdin(cmd)
		if err != nil {
			return err
		}
		pid, err := ceramic.PeerIDFromKey(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pid)
		return nil
	},
}

func init() {
	streamIDCmd.AddCommand(streamIDCreateCmd)
	streamIDCmd.AddCommand(streamIDInspectCmd)
	streamIDCmd.AddCommand(streamIDGenerateCmd)
	streamIDCreateCmd.Flags().String("type", "model", "stream type")
	streamIDCreateCmd.Flags().String("cid", "", "init CID of the stream")
	streamIDCreateCmd.MarkFlagRequired("cid")
	streamIDInspectCmd.Flags().String("id", "", "stream ID")
	streamIDGenerateCmd.Flags().String("type", "model", "stream type")

	streamCmd.AddCommand(streamCreateCmd)
	streamCreateCmd.Flags().String("type", "tile", "stream type")
	streamCreateCmd.Flags().String("controller", "", "stream controller, random if unset")
	streamCreateCmd.Flags().Bool("unique", false, "add a random unique value to the genesis header")
	streamCreateCmd.Flags().StringP("base", "b", "base64url", "write the CAR as a multibase string in this base, raw when empty")

	eventIDCmd.AddCommand(eventIDGenerateCmd)
	eventIDCmd.AddCommand(eventIDDecodeCmd)
	addEventIDFlags(eventIDGenerateCmd, "")
	eventIDGenerateCmd.Flags().Uint("count", 1, "number of event IDs")

	interestCmd.AddCommand(interestCreateCmd)
	interestCmd.AddCommand(interestDecodeCmd)
	interestCreateCmd.Flags().String("sort-key", "model", "sort key")
	interestCreateCmd.Flags().String("peer-id", "", "peer ID, random if unset")
	interestCreateCmd.Flags().String("start", "", "hex start of the range")
	interestCreateCmd.Flags().String("stop", "ff", "hex end of the range")
	interestCreateCmd.Flags().Uint64("not-after", 0, "interest expiry")

	didKeyCmd.AddCommand(didKeyGenerateCmd)
	didKeyGenerateCmd.Flags().Bool("private-key", false, "also print the hex ed25519 seed")

	peerIDCmd.AddCommand(peerIDGenerateCmd)
	peerIDCmd.AddCommand(peerIDFromKeyCmd)
}
