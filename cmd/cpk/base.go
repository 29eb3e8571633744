package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cpk/multibase"
)

var baseCmd = &cobra.Command{
	Use:   "base",
	Short: "Convert to and from multibase encodings",
}

var baseEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode stdin as a multibase string",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("base")
		if err != nil {
			return err
		}
		b, err := multibase.Lookup(name)
		if err != nil {
			return err
		}

		data, err := readStdin(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), multibase.Encode(b, data))
		return nil
	},
}

var baseDecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a multibase string from stdin to raw bytes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := readStdinText(cmd)
		if err != nil {
			return err
		}
		_, data, err := multibase.Decode(s)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var baseGuessCmd = &cobra.Command{
	Use:   "guess",
	Short: "Guess the base of stdin, with or without a multibase prefix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := readStdinText(cmd)
		if err != nil {
			return err
		}
		b, isMultibase, ok := multibase.Guess(s)
		if !ok {
			return errors.New("could not guess the base of the input")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is_multibase: %t\n", b.Name, isMultibase)
		return nil
	},
}

var baseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported bases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, b := range multibase.Bases() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %c %s\n", b.Name, b.Prefix, b.Desc)
		}
		return nil
	},
}

func init() {
	baseCmd.AddCommand(baseEncodeCmd)
	baseCmd.AddCommand(baseDecodeCmd)
	baseCmd.AddCommand(baseGuessCmd)
	baseCmd.AddCommand(baseListCmd)

	baseEncodeCmd.Flags().StringP("base", "b", "base58btc", "target base")
}
