package main

import (
	"github.com/spf13/cobra"

	"cpk/parquetfile"
)

var parquetCmd = &cobra.Command{
	Use:   "parquet",
	Short: "Dump and inspect parquet files",
}

var parquetDumpCmd = &cobra.Command{
	Use:   "dump files...",
	Short: "Print the rows of parquet files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format, err := parquetfile.ParseFormat(name)
		if err != nil {
			return err
		}
		return parquetfile.Dump(cmd.OutOrStdout(), args, format)
	},
}

var parquetInspectCmd = &cobra.Command{
	Use:   "inspect file",
	Short: "Print the metadata of a parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return parquetfile.Inspect(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	parquetCmd.AddCommand(parquetDumpCmd)
	parquetCmd.AddCommand(parquetInspectCmd)

	parquetDumpCmd.Flags().String("format", string(parquetfile.FormatPretty), "output format (csv, json, pretty)")
}
