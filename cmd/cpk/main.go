package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "cpk",
	Short:        "Pocket knife for content addressed data",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		if v := os.Getenv("CPK_LOG_LEVEL"); v != "" && !cmd.Flags().Changed("log-level") {
			level = v
		}
		return setupLogging(cmd.ErrOrStderr(), level)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(baseCmd)
	rootCmd.AddCommand(multihashCmd)
	rootCmd.AddCommand(cidCmd)
	rootCmd.AddCommand(dagCmd)
	rootCmd.AddCommand(carCmd)
	rootCmd.AddCommand(streamIDCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(eventIDCmd)
	rootCmd.AddCommand(interestCmd)
	rootCmd.AddCommand(didKeyCmd)
	rootCmd.AddCommand(peerIDCmd)
	rootCmd.AddCommand(sqlDBCmd)
	rootCmd.AddCommand(p2pCmd)
	rootCmd.AddCommand(casCmd)
	rootCmd.AddCommand(parquetCmd)
}

func setupLogging(w io.Writer, level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{Level: l})))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
