// Command server runs the vaccination certificate gateway.
//
// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vaxcert/internal/audit"
	"vaxcert/internal/catalog"
	"vaxcert/internal/certificate"
	"vaxcert/internal/certificate/handler"
	certmetrics "vaxcert/internal/certificate/metrics"
	"vaxcert/internal/facility"
	"vaxcert/internal/immunization"
	"vaxcert/internal/platform/config"
	"vaxcert/internal/platform/httpserver"
	"vaxcert/internal/platform/logger"
	"vaxcert/internal/platform/postgres"
	"vaxcert/internal/platform/redis"
	"vaxcert/internal/sink"
	"vaxcert/internal/subject"
	httptransport "vaxcert/internal/transport/http"
	"vaxcert/internal/verify"
)

func main() {
	configPath := flag.String("config", os.Getenv("VAXCERT_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var checks []httptransport.HealthCheck

	var (
		subjects   subject.Store
		doses      immunization.Store
		products   catalog.Store
		facilities facility.Store
	)
	var db *sql.DB
	if cfg.Postgres.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		subjects = subject.NewPostgres(db)
		doses = immunization.NewPostgres(db)
		products = catalog.NewPostgres(db)
		facilities = facility.NewPostgres(db)
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
		log.Info("record stores: postgres")
	} else {
		subjects = subject.NewInMemoryStore()
		doses = immunization.NewInMemoryStore()
		products = catalog.NewInMemoryStore()
		facilities = facility.NewInMemoryStore()
		log.Warn("record stores: in-memory, records do not survive restarts")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		products = catalog.NewCachedStore(products, rc.Client, cfg.Redis.CacheTTL, log)
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: rc.Health})
		log.Info("catalog cache: redis", "ttl", cfg.Redis.CacheTTL)
	}

	var publisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = kafka
		log.Info("audit publisher: kafka", "topic", cfg.Kafka.Topic)
	} else {
		publisher = audit.NewStorePublisher(audit.NewInMemoryStore())
		log.Warn("audit publisher: in-memory, events do not survive restarts")
	}

	if err := os.MkdirAll(cfg.Sink.Dir, 0o755); err != nil {
		return err
	}

	signer := verify.NewSigner([]byte(cfg.Signer.Key), cfg.Signer.Validity)

	svc := certificate.NewService(certificate.Config{
		Subjects:    subjects,
		Doses:       doses,
		Catalog:     products,
		Facilities:  facilities,
		FileSink:    sink.NewFileSink(cfg.Sink.Dir),
		PreviewSink: sink.NewMemorySink(),
		Signer:      signer,
		Audit:       publisher,
		Logger:      log,
		Metrics:     certmetrics.New(),
	})

	router := httptransport.NewRouter(handler.New(svc, signer, log), checks...)
	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting vaxcert gateway", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	return srv.Shutdown(shutdownCtx)
}
