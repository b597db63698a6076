package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"payment-rail-gateway/internal/audit"
	auditrepo "payment-rail-gateway/internal/audit/repository"
	"payment-rail-gateway/internal/config"
	"payment-rail-gateway/internal/db"
	"payment-rail-gateway/internal/devcode"
	"payment-rail-gateway/internal/events"
	eventsproducer "payment-rail-gateway/internal/events/producer"
	"payment-rail-gateway/internal/handler"
	"payment-rail-gateway/internal/orchestrator"
	"payment-rail-gateway/internal/policy/engine"
	"payment-rail-gateway/internal/rails/bootstrap"
	scadelivery "payment-rail-gateway/internal/sca/delivery"
	scarepo "payment-rail-gateway/internal/sca/repository"
	scaservice "payment-rail-gateway/internal/sca/service"
	"payment-rail-gateway/internal/security"
	"payment-rail-gateway/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, otel.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "payment-rail-gateway",
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer database.Close()
	}

	reg, err := bootstrap.Build(cfg.EnabledProvidersList(), cfg.HomeCurrency, cfg.RegistryAllowOverride)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	challengeRepo := newChallengeRepo(cfg, database)

	var devStore devcode.Store
	var sender scadelivery.Sender
	if cfg.CodeReturnToClient {
		devStore = devcode.NewMemoryStore()
		sender = scadelivery.NopSender{}
	} else {
		sender = scadelivery.NewSMSSender(cfg.SMSAPIKey, cfg.SMSBaseURL, cfg.SMSSender)
	}

	authOpts := []scaservice.Option{
		scaservice.WithTTL(cfg.ChallengeTTL()),
		scaservice.WithMaxAttempts(cfg.SCAMaxAttempts),
	}
	if devStore != nil {
		authOpts = append(authOpts, scaservice.WithDevStore(devStore))
	}
	authenticator := scaservice.NewAuthenticator(challengeRepo, sender, authOpts...)

	var extraPolicies []string
	if cfg.SCAPolicyPath != "" {
		raw, err := os.ReadFile(cfg.SCAPolicyPath)
		if err != nil {
			log.Fatalf("policy: read %s: %v", cfg.SCAPolicyPath, err)
		}
		extraPolicies = append(extraPolicies, string(raw))
	}
	evaluator := engine.NewOPAEvaluator(cfg.AmountThreshold(), extraPolicies)
	if err := evaluator.HealthCheck(ctx); err != nil {
		log.Fatalf("policy: %v", err)
	}

	if cfg.SimRefPrivateKey == "" || cfg.SimRefPublicKey == "" {
		log.Fatal("config: SIMREF_PRIVATE_KEY and SIMREF_PUBLIC_KEY must be set")
	}
	signer, err := security.ParsePrivateKey(cfg.SimRefPrivateKey)
	if err != nil {
		log.Fatalf("simref private key: %v", err)
	}
	pub, err := security.ParsePublicKey(cfg.SimRefPublicKey)
	if err != nil {
		log.Fatalf("simref public key: %v", err)
	}
	refs := security.NewSimRefProvider(signer, pub, cfg.SimRefIssuer, cfg.SimRefAudience, cfg.SimRefDuration())

	var auditRepo auditrepo.Repository
	if database != nil {
		auditRepo = auditrepo.NewPostgresRepository(database)
	} else {
		auditRepo = auditrepo.NewMemoryRepository()
	}

	metrics, err := otel.NewOperationMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithAudit(audit.NewLogger(auditRepo)),
		orchestrator.WithMetrics(metrics),
	}
	producer, err := eventsproducer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.KafkaEventsTopic)
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	if producer != nil {
		defer producer.Close()
		orchOpts = append(orchOpts, orchestrator.WithEvents(producer))
	}

	orch := orchestrator.New(reg, evaluator, authenticator, refs, orchOpts...)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	handler.NewPaymentHandler(orch, reg).RegisterRoutes(router)
	handler.NewHealthHandler(database, evaluator, reg).RegisterRoutes(router)
	if devStore != nil {
		handler.NewDevHandler(devStore).RegisterRoutes(router)
		log.Println("dev code endpoint enabled: GET /dev/sca/code")
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits drain before telemetry goes away.
	time.Sleep(events.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// newChallengeRepo picks the challenge store: Redis when configured, else
// Postgres when a database is open, else in-memory.
func newChallengeRepo(cfg *config.Config, database *sql.DB) scarepo.Repository {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return scarepo.NewRedisRepository(client)
	}
	if database != nil {
		return scarepo.NewPostgresRepository(database)
	}
	return scarepo.NewMemoryRepository()
}
