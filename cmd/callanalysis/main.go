package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/venture-data/Call-Analysis-Demo/internal/config"
	"github.com/venture-data/Call-Analysis-Demo/internal/events"
	"github.com/venture-data/Call-Analysis-Demo/internal/observability"
	"github.com/venture-data/Call-Analysis-Demo/internal/observability/logging"
	"github.com/venture-data/Call-Analysis-Demo/internal/server"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/analysis"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/llm"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt/assemblyai"
	googlestt "github.com/venture-data/Call-Analysis-Demo/internal/service/stt/google"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt/mock"
	"github.com/venture-data/Call-Analysis-Demo/internal/service/stt/whisper"
	"github.com/venture-data/Call-Analysis-Demo/internal/session"
)

func main() {
	// A local .env overrides nothing already exported.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.Service.Name, cfg.Observability.LogLevel)

	transcriber, err := newTranscriber(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.STT.Provider).Msg("failed to initialize transcription provider")
	}

	completer := llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	analyzer := analysis.NewAnalyzer(transcriber, completer, cfg.STT.Provider, cfg.LLM.Model, nil)

	publisher := events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicAnalyses: cfg.Kafka.TopicAnalyses,
		TopicTriggers: cfg.Kafka.TopicTriggers,
		Principal:     cfg.Kafka.Principal,
	})
	defer publisher.Close()

	obsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)
	obsServer.Start()

	srv := server.New(cfg, analyzer, session.NewManager(), publisher, nil)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.STT.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Str("stt_provider", cfg.STT.Provider).Msg("Call analysis service started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("observability server shutdown failed")
	}
}

// newTranscriber builds the configured speech-to-text provider.
func newTranscriber(ctx context.Context, cfg *config.Configuration) (stt.Transcriber, error) {
	switch cfg.STT.Provider {
	case "assemblyai":
		return assemblyai.New(assemblyai.Config{
			APIKey:       cfg.STT.AssemblyAIKey,
			BaseURL:      cfg.STT.AssemblyAIBase,
			LanguageCode: cfg.STT.LanguageCode,
			PollInterval: cfg.STT.PollInterval,
		})
	case "whisper":
		return whisper.New(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	case "google":
		return googlestt.New(ctx, cfg.STT.LanguageCode)
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.STT.Provider)
	}
}
