package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cpk"
	"cpk/ipld"
	"cpk/multibase"
)

var multihashCmd = &cobra.Command{
	Use:   "multihash",
	Short: "Inspect and compute multihashes",
}

var multihashInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a binary multihash read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		isHex, err := cmd.Flags().GetBool("hex")
		if err != nil {
			return err
		}
		data, err := readStdinMaybeHex(cmd, isHex)
		if err != nil {
			return err
		}

		info, err := ipld.InspectMultihash(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}

var multihashSumCmd = &cobra.Command{
	Use:   "sum",
	Short: "Hash stdin and print the multihash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hashName, err := cmd.Flags().GetString("hash")
		if err != nil {
			return err
		}
		baseName, err := cmd.Flags().GetString("base")
		if err != nil {
			return err
		}
		b, err := multibase.Lookup(baseName)
		if err != nil {
			return err
		}

		data, err := readStdin(cmd)
		if err != nil {
			return err
		}
		mh, err := ipld.SumMultihash(data, hashName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), multibase.Encode(b, mh))
		return nil
	},
}

var cidCmd = &cobra.Command{
	Use:   "cid",
	Short: "Generate, create and inspect CIDs",
}

var cidGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random CID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cpk.RandomCID())
		return nil
	},
}

var cidCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a CIDv1 for the bytes on stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := cmd.Flags().GetString("codec")
		if err != nil {
			return err
		}
		hash, err := cmd.Flags().GetString("hash")
		if err != nil {
			return err
		}

		data, err := readStdin(cmd)
		if err != nil {
			return err
		}
		c, err := ipld.CreateCID(data, codec, hash)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c)
		return nil
	},
}

var cidInspectCmd = &cobra.Command{
	Use:   "inspect [cid]",
	Short: "Inspect a CID given as an argument or on stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := argOrStdin(cmd, args)
		if err != nil {
			return err
		}
		info, err := ipld.InspectCID(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), info)
		return nil
	},
}

var dagCmd = &cobra.Command{
	Use:   "dag",
	Short: "Convert between IPLD DAG codecs",
}

var dagJSONToCBORCmd = &cobra.Command{
	Use:   "json-to-cbor",
	Short: "Convert DAG-JSON on stdin to DAG-CBOR, printed as hex unless --raw",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if raw {
			return ipld.DagJSONToCBOR(cmd.InOrStdin(), w)
		}

		enc := hex.NewEncoder(w)
		if err := ipld.DagJSONToCBOR(cmd.InOrStdin(), enc); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n")
		return err
	},
}

func dagToJSON(convert func(io.Reader, io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		isHex, err := cmd.Flags().GetBool("hex")
		if err != nil {
			return err
		}
		data, err := readStdinMaybeHex(cmd, isHex)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if err := convert(bytes.NewReader(data), w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "\n")
		return err
	}
}

var dagCBORToJSONCmd = &cobra.Command{
	Use:   "cbor-to-json",
	Short: "Convert DAG-CBOR on stdin to DAG-JSON",
	Args:  cobra.NoArgs,
	RunE:  dagToJSON(ipld.DagCBORToJSON),
}

var dagJOSEToJSONCmd = &cobra.Command{
	Use:   "jose-to-json",
	Short: "Convert DAG-JOSE on stdin to DAG-JSON",
	Args:  cobra.NoArgs,
	RunE:  dagToJSON(ipld.DagJOSEToJSON),
}

func init() {
	multihashCmd.AddCommand(multihashInspectCmd)
	multihashCmd.AddCommand(multihashSumCmd)
	multihashInspectCmd.Flags().Bool("hex", false, "stdin is hex encoded")
	multihashSumCmd.Flags().String("hash", "sha2-256", "hash function")
	multihashSumCmd.Flags().StringP("base", "b", "base58btc", "output base")

	cidCmd.AddCommand(cidGenerateCmd)
	cidCmd.AddCommand(cidCreateCmd)
	cidCmd.AddCommand(cidInspectCmd)
	cidCreateCmd.Flags().String("codec", "raw", "multicodec of the content")
	cidCreateCmd.Flags().String("hash", "sha2-256", "hash function")

	dagCmd.AddCommand(dagJSONToCBORCmd)
	dagCmd.AddCommand(dagCBORToJSONCmd)
	dagCmd.AddCommand(dagJOSEToJSONCmd)
	dagJSONToCBORCmd.Flags().Bool("raw", false, "write binary DAG-CBOR")
	dagCBORToJSONCmd.Flags().Bool("hex", false, "stdin is hex encoded")
	dagJOSEToJSONCmd.Flags().Bool("hex", false, "stdin is hex encoded")
}
