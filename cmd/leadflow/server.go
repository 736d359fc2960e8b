package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jorgeai/leadflow/compliance"
	"github.com/jorgeai/leadflow/config"
	"github.com/jorgeai/leadflow/crm"
	"github.com/jorgeai/leadflow/handoff"
	"github.com/jorgeai/leadflow/internal/cache"
	"github.com/jorgeai/leadflow/internal/metrics"
	"github.com/jorgeai/leadflow/internal/telemetry"
	"github.com/jorgeai/leadflow/orchestrator"
	"github.com/jorgeai/leadflow/persistence"
	"github.com/jorgeai/leadflow/ratelimit"
	"github.com/jorgeai/leadflow/scoring"
	"github.com/jorgeai/leadflow/signal"
	"github.com/jorgeai/leadflow/types"
)

// Server owns the HTTP surface and the pipeline components behind it.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	providers *telemetry.Providers

	httpServer *http.Server
	orch       *orchestrator.Orchestrator
	emitter    *crm.Emitter
	store      persistence.ContactStore
	redis      *redis.Client

	cancel context.CancelFunc
	done   chan os.Signal
}

// NewServer wires the pipeline from config.
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers) (*Server, error) {
	collector := metrics.NewCollector("leadflow", logger)

	var (
		db  *gorm.DB
		err error
	)
	if cfg.Database.Driver != "memory" {
		db, err = openDatabase(cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}

	store, err := buildStore(db)
	if err != nil {
		return nil, fmt.Errorf("build contact store: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
	}

	signalCache, err := buildCache(cfg, logger, collector, redisClient, db)
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}

	var crmClient crm.Client = crm.NopClient{}
	if cfg.CRM.BaseURL != "" {
		crmClient = crm.NewHTTPClient(crm.HTTPConfig{
			BaseURL: cfg.CRM.BaseURL,
			APIKey:  cfg.CRM.APIKey,
			Timeout: cfg.CRM.Timeout,
		}, logger)
	} else {
		logger.Warn("crm base url not configured, actions will be discarded")
	}

	emitter := crm.NewEmitter(crm.EmitterConfig{
		Workers:   cfg.CRM.Workers,
		QueueSize: cfg.CRM.QueueSize,
		Retry: crm.RetryConfig{
			MaxRetries:        cfg.CRM.MaxRetries,
			InitialBackoff:    cfg.CRM.InitialBackoff,
			MaxBackoff:        cfg.CRM.MaxBackoff,
			BackoffMultiplier: cfg.CRM.BackoffMultiplier,
		},
	}, crmClient, logger, collector)

	engineCfg := handoff.Config{
		Threshold:  cfg.Handoff.Threshold,
		LoopWindow: cfg.Handoff.LoopWindow,
		LoopDepth:  cfg.Handoff.LoopDepth,
		Tags:       handoff.DefaultTagConfig(),
	}
	for name, wf := range cfg.Handoff.Workflows {
		kind := types.AgentKind(name)
		if kind.Valid() && wf != "" {
			engineCfg.Tags.Workflows[kind] = wf
		}
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Window:      cfg.RateLimit.Window,
		MaxOutbound: cfg.RateLimit.MaxOutbound,
		MaxHandoffs: cfg.RateLimit.MaxHandoffs,
	}, logger)

	guard := compliance.NewGuard(compliance.Config{
		MaxLength:    cfg.Compliance.MaxLength,
		AuditTimeout: cfg.Compliance.AuditTimeout,
	}, nil, logger)

	var opts []orchestrator.Option
	if signalCache != nil {
		opts = append(opts, orchestrator.WithCache(signalCache))
	}
	orchCfg := orchestrator.DefaultConfig()
	orchCfg.ScoreFieldID = cfg.CRM.ScoreFieldID
	orchCfg.TemperatureFieldID = cfg.CRM.TemperatureFieldID
	orch := orchestrator.New(
		orchCfg,
		store,
		signal.NewExtractor(),
		scoring.NewScorer(scoring.Thresholds{Hot: cfg.Scoring.Hot, Warm: cfg.Scoring.Warm}),
		guard,
		handoff.NewEngine(engineCfg, logger),
		limiter,
		emitter,
		logger,
		collector,
		opts...,
	)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		orch:      orch,
		emitter:   emitter,
		store:     store,
		redis:     redisClient,
		done:      make(chan os.Signal, 1),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.routes(collector),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes(collector *metrics.Collector) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/message", s.handleWebhookMessage)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /version", s.handleVersion)
	mux.Handle("GET /metrics", promhttp.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(collector),
		RequestLogger(s.logger),
		RateLimiter(ctx, s.cfg.Server.RequestsPerSecond, s.cfg.Server.Burst, s.logger),
	}
	if s.cfg.Auth.Enabled {
		skip := []string{"/healthz", "/readyz", "/version", "/metrics"}
		middlewares = append(middlewares, JWTAuth(s.cfg.Auth.JWTSecret, skip, s.logger))
	}
	return Chain(mux, middlewares...)
}

// webhookResponse is the reply body for one processed message.
type webhookResponse struct {
	ContactID       string `json:"contact_id"`
	Reply           string `json:"reply,omitempty"`
	ReplySuppressed bool   `json:"reply_suppressed,omitempty"`
	Deduped         bool   `json:"deduped,omitempty"`
	Outcome         string `json:"outcome,omitempty"`
	OwnedBy         string `json:"owned_by,omitempty"`
	Temperature     string `json:"temperature,omitempty"`
}

func (s *Server) handleWebhookMessage(w http.ResponseWriter, r *http.Request) {
	var msg types.InboundMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	res, err := s.orch.HandleMessage(r.Context(), msg)
	if err != nil {
		status := statusForError(err)
		s.logger.Error("message processing failed",
			zap.String("contact_id", msg.ContactID),
			zap.Int("status", status),
			zap.Error(err))
		writeJSON(w, status, map[string]string{
			"error": string(types.GetErrorCode(err)),
		})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{
		ContactID:       res.ContactID,
		Reply:           res.Reply,
		ReplySuppressed: res.ReplySuppressed,
		Deduped:         res.Deduped,
		Outcome:         string(res.Outcome),
		OwnedBy:         string(res.OwnedBy),
		Temperature:     string(res.Score.Temperature),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded", "store": err.Error(),
		})
		return
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded", "redis": err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": Version, "build_time": BuildTime, "git_commit": GitCommit,
	})
}

// Start begins serving in the background.
func (s *Server) Start() error {
	ossignal.Notify(s.done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", zap.Error(err))
			s.done <- syscall.SIGTERM
		}
	}()
	return nil
}

// WaitForShutdown blocks until a signal arrives, then drains everything.
func (s *Server) WaitForShutdown() {
	sig := <-s.done
	s.logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}

	// Drain queued CRM deliveries before closing stores.
	s.emitter.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("store close failed", zap.Error(err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if err := s.providers.Shutdown(ctx); err != nil {
		s.logger.Warn("telemetry shutdown incomplete", zap.Error(err))
	}
}

func statusForError(err error) int {
	switch types.GetErrorCode(err) {
	case types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrRateLimited:
		return http.StatusTooManyRequests
	case types.ErrStoreUnavailable, types.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	case types.ErrUnknownAgent, types.ErrInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func openDatabase(dbCfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbCfg.Driver {
	case "postgres":
		dialector = postgres.Open(dbCfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(dbCfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", dbCfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func buildStore(db *gorm.DB) (persistence.ContactStore, error) {
	if db == nil {
		return persistence.NewMemoryStore(), nil
	}
	return persistence.NewGormStore(db)
}

// buildCache assembles the tiered signal cache from whatever tiers the
// deployment enables. Local is always on; redis and durable are optional.
func buildCache(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector, redisClient *redis.Client, db *gorm.DB) (*cache.TieredCache, error) {
	tiers := []cache.TierConfig{
		{Tier: cache.NewLocalTier(cfg.Cache.LocalSize), TTL: cfg.Cache.SignalTTL},
	}
	if redisClient != nil {
		tiers = append(tiers, cache.TierConfig{
			Tier: cache.NewRedisTier(redisClient, "leadflow:cache:"),
			TTL:  cfg.Cache.SignalTTL,
		})
	}
	if cfg.Cache.DurableEnabled && db != nil {
		durable, err := cache.NewDurableTier(db)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, cache.TierConfig{Tier: durable, TTL: cfg.Cache.ComplianceTTL})
	}
	return cache.New(logger, collector, tiers...), nil
}
