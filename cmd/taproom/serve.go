package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/taproom/taproom/internal/config"
	"github.com/taproom/taproom/internal/db"
	"github.com/taproom/taproom/internal/inventory"
	"github.com/taproom/taproom/internal/order"
	"github.com/taproom/taproom/internal/server"
	"github.com/taproom/taproom/internal/tools"
	"github.com/taproom/taproom/internal/voice"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the POS terminal server",
		Long:  "Launches the voice websocket and REST API the bar terminal connects to.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "taproom.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if cfg.Provider.URL == "" {
		return fmt.Errorf("provider.url is required to serve")
	}
	fmt.Fprintf(out, "Loaded config for venue %q from %s\n", cfg.Venue, configPath)

	gdb, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	engine := inventory.NewEngine(cfg.POS.DefaultBottleOz)
	orders, err := order.NewService(order.ServiceOpts{
		DB:      gdb,
		TaxRate: cfg.POS.TaxRate,
		Engine:  engine,
	})
	if err != nil {
		return err
	}

	// The command handlers and the session manager reference each other:
	// commands like navigate_to_screen push messages to the session that
	// invoked them. The sessions variable is assigned before any command
	// can run.
	var sessions *voice.Manager

	registry := tools.NewRegistry(tools.RegistryOpts{Out: out})
	err = tools.RegisterAll(registry, tools.Deps{
		DB:                gdb,
		Orders:            orders,
		LowStockThreshold: cfg.POS.LowStockThreshold,
		Navigate: func(sessionID, screen string) error {
			s, ok := sessions.Get(sessionID)
			if !ok {
				return fmt.Errorf("no session %s", sessionID)
			}
			s.Notify(voice.Control{Type: "navigate", Screen: screen})
			return nil
		},
		Terminate: func(sessionID string) error {
			return sessions.Terminate(sessionID)
		},
	})
	if err != nil {
		return err
	}

	sessions, err = voice.NewManager(voice.ManagerOpts{
		Registry:   registry,
		SampleRate: cfg.Audio.SampleRate,
		NewProvider: func() (voice.Provider, error) {
			return voice.NewRealtimeProvider(voice.RealtimeOpts{
				URL:            cfg.Provider.URL,
				Model:          cfg.Provider.Model,
				APIKeyEnv:      cfg.Provider.APIKeyEnv,
				Definitions:    registry.Definitions(),
				ReconnectDelay: time.Duration(cfg.Provider.ReconnectDelaySec) * time.Second,
			})
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	digestCron := ""
	if cfg.Digest.LowStock.Enabled {
		digestCron = cfg.Digest.LowStock.Cron
	}

	return server.Start(ctx, server.StartOpts{
		DB:                 gdb,
		Sessions:           sessions,
		Port:               cfg.Server.Port,
		LowStockThreshold:  cfg.POS.LowStockThreshold,
		DigestCron:         digestCron,
		SessionIdleTimeout: time.Duration(cfg.Server.SessionIdleTimeoutSec) * time.Second,
		Out:                out,
	})
}
