// cmd/agent/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"economics-agent/internal/common/config"
	"economics-agent/internal/common/coral"
	"economics-agent/internal/common/database"
	"economics-agent/internal/common/errors"
	"economics-agent/internal/common/genai"
	"economics-agent/internal/common/logger"
	"economics-agent/internal/common/observability"
	"economics-agent/internal/solver"
	"economics-agent/pkg/templates"

	lr "economics-agent/internal/workers/tutoring/llm-refine"
	sp "economics-agent/internal/workers/tutoring/solve-problem"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting economics agent...",
		zap.String("agentId", cfg.Coral.AgentID),
		zap.String("serverUrl", cfg.Coral.ServerURL),
	)

	obs := observability.New("economics-agent")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Coral client with retry ---
	var coralClient *coral.Client
	err = retryWithBackoff(func() error {
		var err error
		coralClient, err = coral.NewClient(&coral.ClientConfig{
			BaseURL:          cfg.Coral.ServerURL,
			AgentID:          cfg.Coral.AgentID,
			AgentDescription: cfg.Coral.AgentDescription,
			ConnectTimeout:   config.GetDuration(cfg.Coral.ConnectTimeout),
			RequestTimeout:   config.GetDuration(cfg.Coral.RequestTimeout),
			RetryConfig: &coral.RetryConfig{
				MaxRetries: cfg.Coral.MaxRetries,
				BaseDelay:  1 * time.Second,
				MaxDelay:   10 * time.Second,
			},
		})
		if err != nil {
			return err
		}
		return coralClient.HealthCheck(ctx)
	}, 10, 2*time.Second, zapLog, "Coral client initialization")

	if err != nil {
		zapLog.Fatal("coral client failed after retries", zap.Error(err))
	}
	zapLog.Info("Coral server connected successfully")

	// --- Init Redis (optional; the agent runs without a cache) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, continuing without solution cache", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Load solution templates ---
	registry, err := templates.Load(cfg.Solver.TemplatesDir)
	if err != nil {
		zapLog.Fatal("template registry load failed",
			zap.Error(errors.NewTemplateLoadFailedError(err)))
	}
	zapLog.Info("Solution templates loaded",
		zap.Strings("categories", registry.Categories()),
	)

	econSolver := solver.New(registry)

	// --- Init LLM refinement (optional) ---
	var refiner sp.Refiner
	if cfg.APIs.GenAI.Enabled {
		genaiClient, err := genai.NewClient(genai.Config{
			APIKey:      cfg.APIs.GenAI.APIKey,
			BaseURL:     cfg.APIs.GenAI.BaseURL,
			Model:       cfg.APIs.GenAI.Model,
			MaxTokens:   cfg.APIs.GenAI.MaxTokens,
			Temperature: cfg.APIs.GenAI.Temperature,
			Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
		})
		if err != nil {
			zapLog.Fatal("genai client init failed", zap.Error(err))
		}

		lrLogAdapter := &llmRefineLoggerAdapter{log}
		refiner = lr.NewHandler(
			&lr.Config{
				Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
				MaxRetries: cfg.APIs.GenAI.MaxRetries,
			},
			genaiClient,
			lrLogAdapter,
		)
		zapLog.Info("LLM refinement enabled", zap.String("model", cfg.APIs.GenAI.Model))
	}

	// --- Wire the solve-problem handler ---
	spCfg := config.GetWorkerConfig(cfg, sp.TaskType)
	if !spCfg.Enabled {
		zapLog.Fatal("solve-problem worker is disabled, nothing to run")
	}

	var cache sp.Cache
	if redis != nil {
		cache = redis
	}

	spLogAdapter := &solveProblemLoggerAdapter{log}
	handler := sp.NewHandler(
		&sp.Config{
			Timeout:  config.GetDuration(spCfg.Timeout),
			CacheTTL: time.Duration(cfg.Solver.CacheTTL) * time.Second,
		},
		econSolver, cache, refiner, spLogAdapter,
	)

	errHandler := errors.NewHandler(log)
	agent := coral.NewAgent(coralClient, handler, errHandler, obs, log, coral.AgentConfig{
		WaitTimeout:  config.GetDuration(cfg.Coral.WaitTimeout),
		LoopSleep:    config.GetDuration(cfg.Coral.LoopSleep),
		ErrorBackoff: config.GetDuration(cfg.Coral.ErrorBackoff),
	})

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := coralClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Run the mention loop until interrupted ---
	if err := agent.Run(ctx); err != nil && ctx.Err() == nil {
		zapLog.Fatal("agent loop failed", zap.Error(err))
	}

	zapLog.Info("Economics agent stopped gracefully")
}

// Logger adapters for workers that declare their own Logger interfaces
type solveProblemLoggerAdapter struct {
	logger.Logger
}

func (a *solveProblemLoggerAdapter) With(fields map[string]interface{}) sp.Logger {
	return &solveProblemLoggerAdapter{a.Logger.With(fields)}
}

type llmRefineLoggerAdapter struct {
	logger.Logger
}

func (a *llmRefineLoggerAdapter) With(fields map[string]interface{}) lr.Logger {
	return &llmRefineLoggerAdapter{a.Logger.With(fields)}
}
