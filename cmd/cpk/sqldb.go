package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cpk"
	"cpk/ceramic"
	"cpk/store"
)

// generateChunk is the number of events written per transaction
const generateChunk = 10 * store.BatchSize

var sqlDBCmd = &cobra.Command{
	Use:   "sql-db",
	Short: "Work with recon sqlite databases",
}

var sqlDBGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fill a recon database with random event IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cmd.Flags().GetString("path")
		if err != nil {
			return err
		}
		count, err := cmd.Flags().GetUint("count")
		if err != nil {
			return err
		}
		p, err := eventIDParams(cmd)
		if err != nil {
			return err
		}
		if p.SortKey == "" {
			p.SortKey = cpk.RandomString(12)
		}

		s, err := store.NewStore(path)
		if err != nil {
			return err
		}
		defer s.Close()

		events := make([]store.Event, 0, min(count, generateChunk))
		for written := uint(0); written < count; {
			events = events[:0]
			for len(events) < cap(events) && written+uint(len(events)) < count {
				id, err := ceramic.RandomEventID(p)
				if err != nil {
					return err
				}
				events = append(events, store.NewEvent(p.SortKey, id))
			}

			if err := s.PutEvents(events); err != nil {
				return err
			}
			written += uint(len(events))
			slog.Info("Wrote events", slog.Uint64("written", uint64(written)), slog.Uint64("total", uint64(count)))
		}

		n, err := s.CountEvents(p.SortKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events with sort key %s\n", path, n, p.SortKey)
		return nil
	},
}

func init() {
	sqlDBCmd.AddCommand(sqlDBGenerateCmd)

	sqlDBGenerateCmd.Flags().String("path", "recon.db", "database path")
	sqlDBGenerateCmd.Flags().Uint("count", 1000, "number of events")
	addEventIDFlags(sqlDBGenerateCmd, "model")
}
