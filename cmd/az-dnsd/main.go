package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haukened/az-dns/internal/dns/common/clock"
	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/config"
	"github.com/haukened/az-dns/internal/dns/gateways/transport"
	"github.com/haukened/az-dns/internal/dns/gateways/wire"
	"github.com/haukened/az-dns/internal/dns/repos/answercache"
	"github.com/haukened/az-dns/internal/dns/repos/zone"
	"github.com/haukened/az-dns/internal/dns/services/resolver"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "az-dnsd"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the DNS server
type Application struct {
	config     *config.AppConfig
	transports []transport.ServerTransport
	resolver   *resolver.Resolver
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Configure global logging
	err = log.Configure(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"port":       cfg.Port,
		"cache_size": cfg.CacheSize,
		"zone_dir":   cfg.ZoneDir,
		"transports": cfg.Transports,
	}, "Starting AZ-DNS server")

	// Build application with all dependencies
	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
		cancel()
	}()

	// Start the DNS server
	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "AZ-DNS server stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// Create shared clock for consistent time across all components
	clk := clock.RealClock{}

	// Initialize logger (already configured globally)
	logger := log.GetLogger()

	// Create DNS wire codec
	codec := wire.NewCodec(logger)

	// Load authoritative zones from the configured directory
	store, err := zone.LoadZoneDirectory(cfg.ZoneDir, time.Duration(cfg.DefaultTTL)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone directory: %w", err)
	}
	log.Info(map[string]any{
		"zone_dir": cfg.ZoneDir,
		"zones":    len(store.Zones()),
		"records":  store.Count(),
	}, "Authoritative zones loaded")

	// Create the positive answer cache
	var cache resolver.AnswerCache
	if cfg.DisableCache {
		log.Info(map[string]any{"disabled": true}, "Answer caching disabled")
	} else {
		cacheSize := cfg.CacheSize
		if cacheSize > uint(^uint(0)>>1) { // Check if it exceeds max int
			return nil, fmt.Errorf("cache size too large: %d (max %d)", cacheSize, ^uint(0)>>1)
		}
		cache, err = answercache.New(int(cacheSize))
		if err != nil {
			return nil, fmt.Errorf("failed to create answer cache: %w", err)
		}
		log.Info(map[string]any{
			"type": "LRU",
			"size": cfg.CacheSize,
		}, "Answer cache configured")
	}

	// Build service layer
	resolverService := resolver.NewResolver(resolver.ResolverOptions{
		Store:  store,
		Cache:  cache,
		Clock:  clk,
		Logger: logger,
	})

	// Build transport layer
	addr := fmt.Sprintf(":%d", cfg.Port)
	queryTimeout := time.Duration(cfg.QueryTimeout) * time.Second
	transports := make([]transport.ServerTransport, 0, len(cfg.Transports))
	for _, name := range cfg.Transports {
		t, err := transport.NewTransport(transport.TransportType(name), addr, codec, logger, queryTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s transport: %w", name, err)
		}
		transports = append(transports, t)
	}

	return &Application{
		config:     cfg,
		transports: transports,
		resolver:   resolverService,
	}, nil
}

// Run starts the DNS server and blocks until context is cancelled
func (app *Application) Run(ctx context.Context) error {
	// Start every configured transport
	for _, t := range app.transports {
		if err := t.Start(ctx, app.resolver); err != nil {
			return fmt.Errorf("failed to start transport on %s: %w", t.Address(), err)
		}
		log.Info(map[string]any{
			"address": t.Address(),
		}, "DNS server listening")
	}

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info(nil, "Shutdown initiated")

	// Stop transports gracefully, bounded by the shutdown timeout
	done := make(chan struct{})
	go func() {
		for _, t := range app.transports {
			if err := t.Stop(); err != nil {
				log.Warn(map[string]any{
					"address": t.Address(),
					"error":   err.Error(),
				}, "Error during transport shutdown")
			}
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(defaultShutdownTimeout):
		return fmt.Errorf("shutdown timed out after %s", defaultShutdownTimeout)
	}
}
