package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"foodshare/internal/jwttoken"
	ledgerhandler "foodshare/internal/ledger/handler"
	ledgermetrics "foodshare/internal/ledger/metrics"
	ledgerservice "foodshare/internal/ledger/service"
	ledgerstore "foodshare/internal/ledger/store"
	"foodshare/internal/platform/config"
	"foodshare/internal/platform/httpserver"
	"foodshare/internal/platform/logger"
	"foodshare/internal/platform/middleware"
	platformredis "foodshare/internal/platform/redis"
	registryhandler "foodshare/internal/registry/handler"
	registryservice "foodshare/internal/registry/service"
	registrystore "foodshare/internal/registry/store"
	"foodshare/pkg/platform/events"
	"foodshare/pkg/platform/events/publisher"
	"foodshare/pkg/platform/events/sink/kafka"
	"foodshare/pkg/platform/events/sink/redisstream"
	eventmemory "foodshare/pkg/platform/events/store/memory"
	eventpostgres "foodshare/pkg/platform/events/store/postgres"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	pubOpts := []publisher.Option{publisher.WithLogger(log)}
	var probes []func(context.Context) error

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		probes = append(probes, redisClient.Health)
		pubOpts = append(pubOpts, publisher.WithSink(
			redisstream.New(redisClient.Client, redisstream.WithStream(cfg.Redis.Stream)),
		))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			log.Error("kafka connection failed", "error", err.Error())
			os.Exit(1)
		}
		sink := kafka.New(kafkaClient, kafka.WithTopic(cfg.Kafka.Topic))
		defer sink.Close()
		pubOpts = append(pubOpts, publisher.WithSink(sink))
	}

	var eventStore events.Store = eventmemory.NewInMemoryStore()
	var donors, recipients registryservice.ProfileStore
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		probes = append(probes, db.PingContext)
		donors = registrystore.NewPostgres(db, registrystore.RoleDonor)
		recipients = registrystore.NewPostgres(db, registrystore.RoleRecipient)

		pgEvents := eventpostgres.New(db)
		lastSeq, err := pgEvents.LastSeq(context.Background())
		if err != nil {
			log.Error("failed to read event trail position", "error", err.Error())
			os.Exit(1)
		}
		eventStore = pgEvents
		pubOpts = append(pubOpts, publisher.WithStartSeq(lastSeq))
	} else {
		donors = registrystore.NewInMemory()
		recipients = registrystore.NewInMemory()
	}

	pub := publisher.NewPublisher(eventStore, pubOpts...)

	registrySvc := registryservice.New(donors, recipients,
		registryservice.WithLogger(log),
		registryservice.WithPublisher(pub),
	)
	ledgerSvc := ledgerservice.New(ledgerstore.NewInMemory(), registrySvc, cfg.InitialAdmin,
		ledgerservice.WithLogger(log),
		ledgerservice.WithPublisher(pub),
		ledgerservice.WithMetrics(ledgermetrics.New()),
	)

	jwtSvc := jwttoken.NewService(cfg.JWTSigningKey, "foodshare")

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logger(log))

	router.Get("/healthz", healthHandler(probes...))
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSvc, log))
		registryhandler.New(registrySvc, log).Register(r)
		ledgerhandler.New(ledgerSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting foodshare", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}

// healthHandler answers ok while every backing-store probe responds and
// degraded (503) as soon as one stops.
func healthHandler(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
