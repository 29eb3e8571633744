package main

import (
	"bytes"
	"fmt"
	"io"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/spf13/cobra"

	"cpk"
	"cpk/car"
	"cpk/multibase"
)

var carCmd = &cobra.Command{
	Use:   "car",
	Short: "Create and inspect CAR archives",
}

var carCreateCmd = &cobra.Command{
	Use:   "create [files...]",
	Short: "Pack each file, or stdin, into a block and write a CAR with all of them as roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		codecName, err := cmd.Flags().GetString("codec")
		if err != nil {
			return err
		}
		var codec multicodec.Code
		if err := codec.Set(codecName); err != nil {
			return err
		}

		paths := args
		if len(paths) == 0 {
			paths = []string{"-"}
		}

		var roots []cid.Cid
		var blks []blocks.Block
		for _, p := range paths {
			data, err := readInput(cmd, p)
			if err != nil {
				return err
			}
			c, err := cpk.NewCID(data, uint64(codec))
			if err != nil {
				return err
			}
			b, err := blocks.NewBlockWithCid(data, c)
			if err != nil {
				return err
			}
			roots = append(roots, c)
			blks = append(blks, b)
		}

		var buf bytes.Buffer
		if err := car.Write(&buf, roots, blks...); err != nil {
			return err
		}
		return writeMaybeMultibase(cmd, buf.Bytes())
	},
}

var carInspectCmd = &cobra.Command{
	Use:   "inspect [file|-]",
	Short: "Inspect a CAR archive, verifying every block",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}

		isMultibase, err := cmd.Flags().GetBool("multibase")
		if err != nil {
			return err
		}
		if isMultibase {
			_, data, err = multibase.Decode(string(bytes.TrimSpace(data)))
			if err != nil {
				return err
			}
		}

		s, err := car.Inspect(bytes.NewReader(data))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), s)
		return nil
	},
}

// writeMaybeMultibase writes data raw, or as a multibase line when
// the command's --base flag is set
func writeMaybeMultibase(cmd *cobra.Command, data []byte) error {
	name, err := cmd.Flags().GetString("base")
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if name == "" {
		_, err := w.Write(data)
		return err
	}
	b, err := multibase.Lookup(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, multibase.Encode(b, data)+"\n")
	return err
}

func init() {
	carCmd.AddCommand(carCreateCmd)
	carCmd.AddCommand(carInspectCmd)

	carCreateCmd.Flags().String("codec", "raw", "multicodec of the blocks")
	carCreateCmd.Flags().StringP("base", "b", "", "write the CAR as a multibase string in this base")
	carInspectCmd.Flags().Bool("multibase", false, "input is a multibase encoded CAR")
}
