package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	auditpkg "authguard/internal/audit"
	auditrepo "authguard/internal/audit/repository"
	"authguard/internal/config"
	"authguard/internal/db"
	"authguard/internal/events"
	identityrepo "authguard/internal/identity/repository"
	identityservice "authguard/internal/identity/service"
	"authguard/internal/lockout"
	"authguard/internal/observability"
	"authguard/internal/ratelimit"
	"authguard/internal/security"
	"authguard/internal/server/handler"
	"authguard/internal/server/middleware"
	sessionrepo "authguard/internal/session/repository"
	sessionservice "authguard/internal/session/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer conn.Close()
	log.Println("database connection established")

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	providers, err := observability.NewProviders(context.Background(), cfg.OTLPEndpoint, "authguard", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("observability: %v", err)
	}
	providers.SetGlobal()
	metrics := observability.NewAuthMetrics(providers.MeterProvider)

	emitter := events.NewKafkaEmitter(cfg.KafkaBrokersList(), cfg.SecurityEventTopic)
	if emitter != nil {
		log.Printf("security-event stream enabled (topic %s)", cfg.SecurityEventTopic)
	}

	users := identityrepo.NewPostgresRepository(conn)
	sessions := sessionservice.NewManager(sessionrepo.NewPostgresRepository(conn), tokens, cfg.SessionTTLDuration())
	auditLogger := auditpkg.NewLogger(auditrepo.NewPostgresRepository(conn))
	guard := lockout.NewGuard(cfg.LockoutMaxAttempts, cfg.LockoutDurationValue(), cfg.LockoutSweepIntervalValue())
	authSvc := identityservice.NewAuthService(users, security.NewHasher(cfg.BcryptCost), guard, sessions, auditLogger, emitter)
	resolver := identityservice.NewRoleResolver(users)

	app := fiber.New(fiber.Config{
		AppName:               "authguard",
		DisableStartupMessage: true,
	})
	handler.SetupRoutes(
		app,
		handler.NewAuthHandler(authSvc, metrics),
		handler.NewSessionHandler(sessions),
		handler.NewAuditHandler(auditrepo.NewPostgresRepository(conn)),
		handler.NewHealthHandler(conn),
		middleware.Auth(sessions),
		middleware.RateLimit(ratelimit.NewLimiter(cfg.AuthRateWindowValue(), cfg.AuthRateMax), "auth", "/health", metrics),
		middleware.RateLimit(ratelimit.NewLimiter(cfg.APIRateWindowValue(), cfg.APIRateMax), "api", "/health", metrics),
		resolver,
	)

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	guard.Stop()

	if emitter != nil {
		// Give in-flight event emits a moment to drain before closing the writer.
		time.Sleep(events.ShutdownDrainDuration)
		if err := emitter.Close(); err != nil {
			log.Printf("events: close: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("observability shutdown: %v", err)
	}
	log.Println("server stopped")
}
