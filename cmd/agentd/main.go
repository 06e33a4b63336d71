package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	orchestration "github.com/speakbright/agent-core/core"
	"github.com/speakbright/agent-core/core/agents"
	"github.com/speakbright/agent-core/core/agents/englishtutor"
	"github.com/speakbright/agent-core/core/agents/interviewprep"
	"github.com/speakbright/agent-core/core/datachannel"
	"github.com/speakbright/agent-core/core/rooms"
	"github.com/speakbright/agent-core/core/texttospeech"
	"github.com/speakbright/agent-core/core/texttospeech/deepgram"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		slog.Error("agentd failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	registry := agents.NewRegistry()
	if err := englishtutor.Register(registry); err != nil {
		return err
	}
	if err := interviewprep.Register(registry); err != nil {
		return err
	}

	var roomService *rooms.Client
	if cfg.Rooms.URL != "" {
		if roomService, err = rooms.NewClient(cfg.Rooms.URL, cfg.Rooms.APIKey); err != nil {
			return err
		}
	} else if roomService, err = rooms.NewClientFromEnv(); err != nil {
		slog.Warn("room teardown disabled", "reason", err)
		roomService = nil
	}

	var synthesizer texttospeech.Synthesizer
	if cfg.TTS.Enabled {
		deepgramSynthesizer, err := deepgram.NewSynthesizer()
		if err != nil {
			slog.Warn("closing utterances disabled", "reason", err)
		} else {
			synthesizer = deepgramSynthesizer
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := datachannel.NewHub()
	manager := newSessionManager(ctx, agents.NewFactory(registry), hub, roomServiceOrNil(roomService), synthesizer)

	mux := http.NewServeMux()
	server := &httpServer{registry: registry, manager: manager, hub: hub}
	server.routes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")

		drainCtx, drainCancel := context.WithTimeout(context.Background(), DrainTimeout)
		manager.Drain(drainCtx)
		drainCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		shutdownCancel()
		cancel()
	}()

	slog.Info("agentd listening", "addr", addr, "agents", registry.Names())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// roomServiceOrNil keeps a typed nil *rooms.Client from sneaking into the
// RoomService interface.
func roomServiceOrNil(client *rooms.Client) orchestration.RoomService {
	if client == nil {
		return nil
	}
	return client
}
