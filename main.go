package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"WebCanvas/internal/config"
	wcnet "WebCanvas/internal/net"
	"WebCanvas/internal/server"
	"WebCanvas/internal/store"
	"WebCanvas/internal/ui"
)

const discoverTimeout = 3 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "serve" {
		if err := runServer(cfg); err != nil {
			log.Fatalf("[SERVER] %v", err)
		}
		return
	}

	target := "/"
	if len(args) > 0 && strings.HasPrefix(args[0], ui.Scheme) {
		target = args[0]
	}
	runEditor(cfg, target)
}

func runServer(cfg config.Config) error {
	if cfg.Store.Backend == "remote" {
		return fmt.Errorf("serve needs a local store backend, not %q", cfg.Store.Backend)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	log.Printf("Starting document store (%s backend)", cfg.Store.Backend)
	srv := server.New(st, server.Options{
		Width:     float64(cfg.Editor.Width),
		Height:    float64(cfg.Editor.Height),
		Scale:     cfg.Editor.ExportScale,
		Advertise: cfg.Server.Advertise,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Listen)
}

func runEditor(cfg config.Config, target string) {
	st, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[STORE] %v", err)
	}
	defer st.Close()

	log.Printf("Starting editor (%s backend) at %s", cfg.Store.Backend, target)
	ui.RunApp(cfg, st, target)
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "file":
		return store.NewFile(cfg.Store.Dir)
	case "firestore":
		return store.NewFirestore(ctx, store.FirestoreConfig{
			Project:     cfg.Store.Project,
			Collection:  cfg.Store.Collection,
			Credentials: cfg.Store.Credentials,
		})
	case "remote":
		addr := cfg.Store.Address
		if addr == "" {
			found, err := wcnet.Discover(discoverTimeout)
			if err != nil {
				return nil, fmt.Errorf("no store address configured: %w", err)
			}
			log.Printf("[MDNS] Using document store at %s", found)
			addr = found
		}
		return store.NewRemote(addr, &http.Client{Timeout: cfg.Store.Timeout.Duration}), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
