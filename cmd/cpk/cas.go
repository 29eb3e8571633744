package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"cpk/cas"
	"cpk/ceramic"
	"cpk/store"
)

var casCmd = &cobra.Command{
	Use:   "cas",
	Short: "Submit anchor requests or run a stub anchor service",
}

var casRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Create streams and submit anchor requests for them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		config, err := cas.LoadClientConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("url") {
			if config.URL, err = cmd.Flags().GetString("url"); err != nil {
				return err
			}
		}
		client, err := cas.NewClient(config)
		if err != nil {
			return err
		}

		lc, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		slog.Info("Submitting anchor requests",
			slog.String("url", client.RequestsURL()),
			slog.String("node", client.Signer().Controller()),
			slog.Int("count", lc.Count))

		// A single request prints the service's answer as is
		if lc.Count == 1 {
			root, data, err := ceramic.CreateStreamCAR(lc.StreamType, lc.Controller, lc.Unique)
			if err != nil {
				return err
			}
			resp, err := client.Submit(cmd.Context(), cas.AnchorRequest{Root: root, CAR: data})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(resp.Body))
			return nil
		}

		res, err := cas.Generate(cmd.Context(), client, lc)
		if encErr := json.NewEncoder(cmd.OutOrStdout()).Encode(res); encErr != nil {
			return encErr
		}
		return err
	},
}

func loadConfig(cmd *cobra.Command) (cas.LoadConfig, error) {
	lc := cas.DefaultLoadConfig()
	flags := cmd.Flags()

	var err error
	if lc.Count, err = flags.GetInt("count"); err != nil {
		return lc, err
	}
	if lc.Rate, err = flags.GetFloat64("rate"); err != nil {
		return lc, err
	}
	if lc.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return lc, err
	}
	if lc.Unique, err = flags.GetBool("unique"); err != nil {
		return lc, err
	}
	if lc.Controller, err = flags.GetString("controller"); err != nil {
		return lc, err
	}
	if lc.StreamType, err = streamType(cmd); err != nil {
		return lc, err
	}
	return lc, nil
}

var casServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a stub anchor service that records requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
		dbPath, err := cmd.Flags().GetString("db")
		if err != nil {
			return err
		}

		s, err := store.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()

		srv := &http.Server{
			Addr:              addr,
			Handler:           cas.NewServer(s).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Starting stub anchor service", slog.String("addr", addr), slog.String("db", dbPath))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("Stub anchor service stopped")
		return nil
	},
}

func init() {
	casCmd.AddCommand(casRequestCmd)
	casCmd.AddCommand(casServeCmd)

	d := cas.DefaultLoadConfig()
	casRequestCmd.Flags().StringP("config", "f", "", "client configuration file (yaml)")
	casRequestCmd.Flags().String("url", cas.DefaultClientConfig().URL, "anchor service url, overrides config and "+cas.EnvURL)
	casRequestCmd.Flags().Int("count", d.Count, "number of requests")
	casRequestCmd.Flags().Float64("rate", d.Rate, "requests per second, unlimited when zero")
	casRequestCmd.Flags().Int("concurrency", d.Concurrency, "maximum requests in flight")
	casRequestCmd.Flags().String("type", "tile", "stream type")
	casRequestCmd.Flags().String("controller", d.Controller, "stream controller, random if empty")
	casRequestCmd.Flags().Bool("unique", d.Unique, "make every stream unique")

	casServeCmd.Flags().String("addr", "127.0.0.1:8081", "listen address")
	casServeCmd.Flags().String("db", store.InMemory, "request database path")
}
