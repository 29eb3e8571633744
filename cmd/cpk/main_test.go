package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag of c and its children back to its default
// so one execution of rootCmd does not leak into the next
func resetFlags(t *testing.T, c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			def := strings.Trim(f.DefValue, "[]")
			vals := []string{}
			if def != "" {
				vals = strings.Split(def, ",")
			}
			require.NoError(t, sv.Replace(vals))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(t, sub)
	}
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	resetFlags(t, rootCmd)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func runErr(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	resetFlags(t, rootCmd)

	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestBase(t *testing.T) {
	t.Run("encode", func(t *testing.T) {
		require.Equal(t, "f796573206d616e692021\n", run(t, "yes mani !", "base", "encode", "--base", "base16"))
	})

	t.Run("decode", func(t *testing.T) {
		require.Equal(t, "yes mani !", run(t, "f796573206d616e692021\n", "base", "decode"))
	})

	t.Run("guess", func(t *testing.T) {
		require.Equal(t, "base16 is_multibase: false\n", run(t, "796573206d616e692021\n", "base", "guess"))
		require.Equal(t, "base16 is_multibase: true\n", run(t, "f796573206d616e692021", "base", "guess"))
	})

	t.Run("flags reset between runs", func(t *testing.T) {
		require.Equal(t, "f796573\n", run(t, "yes", "base", "encode", "--base", "base16"))
		require.Equal(t, "zhmzS\n", run(t, "yes", "base", "encode"))
	})

	t.Run("unknown base", func(t *testing.T) {
		require.Error(t, runErr(t, "x", "base", "encode", "--base", "base99"))
	})
}

func TestCID(t *testing.T) {
	const hello = "bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"

	t.Run("create", func(t *testing.T) {
		require.Equal(t, hello+"\n", run(t, "hello world", "cid", "create"))
	})

	t.Run("inspect", func(t *testing.T) {
		out := run(t, "", "cid", "inspect", hello)
		require.Contains(t, out, "CID: "+hello)
		require.Contains(t, out, "Version: V1")
	})

	t.Run("generate", func(t *testing.T) {
		out := run(t, "", "cid", "generate")
		require.True(t, strings.HasPrefix(out, "b"))
	})
}

func TestDag(t *testing.T) {
	require.Equal(t, "a1616101\n", run(t, `{"a":1}`, "dag", "json-to-cbor"))
	require.Equal(t, "{\"a\":1}\n", run(t, "a1616101\n", "dag", "cbor-to-json", "--hex"))
}

func TestStreamID(t *testing.T) {
	const c = "bafyreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e"

	id := strings.TrimSpace(run(t, "", "stream-id", "create", "--type", "model", "--cid", c))
	require.True(t, strings.HasPrefix(id, "k"))

	out := run(t, "", "stream-id", "inspect", "--id", id)
	require.Contains(t, out, "Type: model (2)")
	require.Contains(t, out, "CID: "+c)
}

func TestEventID(t *testing.T) {
	out := run(t, "", "event-id", "generate", "--network", "mainnet", "--count", "2")
	ids := strings.Fields(out)
	require.Len(t, ids, 2)
	require.NotEqual(t, ids[0], ids[1])

	decoded := run(t, "", "event-id", "decode", ids[0])
	require.Contains(t, decoded, "network_id: 0,")
}

func TestCAR(t *testing.T) {
	encoded := run(t, "hello world", "car", "create", "--base", "base64url")
	require.True(t, strings.HasPrefix(encoded, "u"))

	out := run(t, encoded, "car", "inspect", "--multibase")
	require.Contains(t, out, "Version: 1\n")
	require.Contains(t, out, "bafkreifzjut3te2nhyekklss27nh3k72ysco7y32koao5eei66wof36n5e raw 11")
}

func TestStreamCreate(t *testing.T) {
	encoded := run(t, "", "stream", "create", "--type", "model", "--unique")
	out := run(t, encoded, "car", "inspect", "--multibase")
	require.Contains(t, out, "Blocks: 3\n")
}

func TestSQLDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recon.db")
	out := run(t, "", "sql-db", "generate", "--path", path, "--count", "1500", "--sort-key", "model")
	require.Equal(t, path+": 1500 events with sort key model\n", out)
}

func TestLogLevel(t *testing.T) {
	require.Error(t, runErr(t, "", "--log-level", "loud", "cid", "generate"))
	run(t, "", "--log-level", "debug", "cid", "generate")
}
