package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/yutapi3/picamstream/internal/capture"
	"github.com/yutapi3/picamstream/internal/config"
	"github.com/yutapi3/picamstream/internal/server"
	"github.com/yutapi3/picamstream/internal/store"
	"github.com/yutapi3/picamstream/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Without a camera device there is nothing for this process to serve;
	// hand the machine over to the external fallback streamer instead.
	if !capture.DeviceAvailable(cfg.Device) {
		log.Printf("camera device %s is not available", capture.DevicePath(cfg.Device))
		runFallback(cfg.FallbackCommand)
		return
	}

	// The event log is best-effort: without it the server still streams.
	st := openStore(cfg)
	var events stream.EventRecorder
	if st != nil {
		defer st.Close()
		events = st.Events()
	}

	frames := stream.NewFrameStore()
	camera := capture.NewCamera(cfg.Device, cfg.Width, cfg.Height)
	pipeline := stream.NewPipeline(camera, frames, cfg.FrameInterval(), events)

	// Background capture loop; the process never waits on it except at shutdown.
	pipeline.Start()

	genCfg := stream.DefaultGeneratorConfig()
	genCfg.FrameInterval = cfg.FrameInterval()
	genCfg.PollInterval = cfg.PollInterval
	genCfg.MaxPolls = cfg.MaxPolls
	genCfg.FallbackWidth = cfg.Width
	genCfg.FallbackHeight = cfg.Height

	srv := server.New(server.Config{
		Frames:   frames,
		Pipeline: pipeline,
		Stream:   genCfg,
		Store:    st,
	})

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     srv,
		ReadTimeout: 10 * time.Second,
		// No write timeout: viewer connections stream indefinitely.
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting picamstream server on %s", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	// Stop the capture loop first so the device is released, then drain the
	// HTTP server. Neither wait is unbounded.
	pipeline.Stop(cfg.StopTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// runFallback executes the external fallback streaming program. No data
// flows back into this process; we only surface its exit status in the log.
func runFallback(command []string) {
	if len(command) == 0 {
		log.Println("No fallback command configured")
		return
	}

	log.Printf("Starting fallback streamer: %v", command)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		log.Printf("Fallback streamer failed: %v", err)
	}
}

// openStore opens the SQLite event log, defaulting to ~/.picamstream.
// Failures are logged and tolerated; the stream does not depend on the log.
func openStore(cfg *config.Config) *store.Store {
	dbPath := cfg.DBPath
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Printf("Failed to get home directory, event log disabled: %v", err)
			return nil
		}

		dbDir := filepath.Join(homeDir, ".picamstream")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Printf("Failed to create data directory, event log disabled: %v", err)
			return nil
		}
		dbPath = filepath.Join(dbDir, "picamstream.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Printf("Failed to open event log, continuing without it: %v", err)
		return nil
	}

	return st
}
