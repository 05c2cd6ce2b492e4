package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chainwatch/fleetbot/pkg/config"
	"github.com/chainwatch/fleetbot/pkg/log"
	"github.com/chainwatch/fleetbot/pkg/metrics"
	"github.com/chainwatch/fleetbot/pkg/plugin"
	"github.com/chainwatch/fleetbot/pkg/runtime"
	"github.com/chainwatch/fleetbot/pkg/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fleet: open its stores, load its plugins, serve metrics",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "fleet manifest YAML file (required)")
	runCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "metrics HTTP listen address")
	_ = runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	manifestPath, _ := cmd.Flags().GetString("file")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	manifest, err := config.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	persistent, err := store.Open(manifest.Spec.Store.PersistentPath, "task_store_")
	if err != nil {
		return fmt.Errorf("open persistent store: %w", err)
	}
	defer persistent.Close()

	temporary, err := store.Open(manifest.Spec.Store.TemporaryPath, "task_store_")
	if err != nil {
		return fmt.Errorf("open temporary store: %w", err)
	}
	defer temporary.Close()

	rt := runtime.New(persistent, temporary)

	go func() {
		http.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.WithComponent("fleetd").Error().Err(err).Msg("metrics server stopped")
		}
	}()
	log.WithComponent("fleetd").Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := rt.Context(ctx)
	defer cancel()

	host := plugin.NewHost(manifest.Spec.Plugins.Dir, persistent, temporary)
	log.WithComponent("fleetd").Info().Str("dir", manifest.Spec.Plugins.Dir).Msg("starting plugin host")

	if err := host.Run(runCtx); err != nil {
		return fmt.Errorf("plugin host: %w", err)
	}

	rt.Shutdown()
	return nil
}
