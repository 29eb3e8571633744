package main

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// readInput reads the named file, or stdin when the path is empty or "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func readStdin(cmd *cobra.Command) ([]byte, error) {
	return readInput(cmd, "")
}

// readStdinText reads stdin with trailing whitespace removed
func readStdinText(cmd *cobra.Command) (string, error) {
	b, err := readStdin(cmd)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), " \t\r\n"), nil
}

// readStdinMaybeHex reads stdin, undoing hex encoding when asked
func readStdinMaybeHex(cmd *cobra.Command, isHex bool) ([]byte, error) {
	if !isHex {
		return readStdin(cmd)
	}
	s, err := readStdinText(cmd)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(s)
}

// argOrStdin returns the first argument, falling back to stdin text
func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	return readStdinText(cmd)
}
