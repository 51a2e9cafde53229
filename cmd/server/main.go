package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bagofholding/internal/access"
	"bagofholding/internal/audit"
	auditkafka "bagofholding/internal/audit/kafka"
	"bagofholding/internal/bag"
	httpapi "bagofholding/internal/http"
	invitationhandler "bagofholding/internal/invitation/handler"
	invitationservice "bagofholding/internal/invitation/service"
	invitationstore "bagofholding/internal/invitation/store"
	"bagofholding/internal/item"
	jwttoken "bagofholding/internal/jwt"
	"bagofholding/internal/notify"
	"bagofholding/internal/platform/config"
	"bagofholding/internal/platform/httpserver"
	"bagofholding/internal/platform/logger"
	"bagofholding/internal/platform/metrics"
	"bagofholding/internal/platform/postgres"
	platformredis "bagofholding/internal/platform/redis"
	"bagofholding/internal/ratelimit"
	"bagofholding/internal/user"
)

// main wires dependencies and owns process lifecycle. Business logic lives in
// the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if db != nil {
		if _, err := db.Exec(postgres.Schema); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(rootCtx)

	// Notifications: Redis pub/sub behind a bounded queue when configured,
	// otherwise dropped silently.
	var sink notify.Sink = notify.NoopSink{}
	if redisClient != nil {
		broadcaster := notify.NewBroadcaster(notify.NewRedisPublisher(redisClient.Client), log, 256)
		group.Go(func() error { return ignoreCancel(broadcaster.Run(ctx)) })
		sink = broadcaster
	}

	// Audit trail: events flow through an inbox channel to a worker that owns
	// the backing store, Kafka when brokers are configured.
	var auditBacking audit.Store = audit.NewInMemoryStore()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := auditkafka.New(rootCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditBacking = kafkaStore
	}
	auditInbox := make(chan audit.Event, 256)
	group.Go(func() error { return ignoreCancel(audit.NewWorker(auditBacking, auditInbox, log).Run(ctx)) })
	auditor := audit.NewPublisher(audit.NewChannelStore(auditInbox))

	m := metrics.New()
	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	// Limits live in Redis when available so they hold across replicas.
	var limiterStore ratelimit.Store = ratelimit.NewInMemoryStore()
	if redisClient != nil {
		limiterStore = ratelimit.NewRedisStore(redisClient.Client)
	}
	limiter := ratelimit.NewMiddleware(limiterStore, ratelimit.DefaultRules, log)

	accessSvc := access.NewService(newAccessStore(db), log)
	userSvc := user.NewService(newUserStore(db), tokens, cfg.AccessTokenTTL, m, log)
	bagSvc := bag.NewService(newBagStore(db), accessSvc, auditor, m, log)
	invitationSvc := invitationservice.New(newInvitationStore(db), accessSvc, sink, auditor,
		invitationservice.NewMetrics(), log, cfg.InvitationTTL)
	itemSvc := item.NewService(newItemStore(db), accessSvc, sink, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Metrics:      m,
		JWTValidator: tokens,
		RateLimiter:  limiter,
		Users:        user.NewHandler(userSvc, log),
		Bags:         bag.NewHandler(bagSvc, log),
		Invitations:  invitationhandler.New(invitationSvc, bagSvc, log),
		Items:        item.NewHandler(itemSvc, log),
		Redis:        redisClient,
		DB:           db,
	})

	srv := httpserver.New(cfg, router)

	group.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func newAccessStore(db *sql.DB) access.Store {
	if db == nil {
		return access.NewInMemoryStore()
	}
	return access.NewPostgresStore(db)
}

func newUserStore(db *sql.DB) user.Store {
	if db == nil {
		return user.NewInMemoryStore()
	}
	return user.NewPostgresStore(db)
}

func newBagStore(db *sql.DB) bag.Store {
	if db == nil {
		return bag.NewInMemoryStore()
	}
	return bag.NewPostgresStore(db)
}

func newInvitationStore(db *sql.DB) invitationstore.Store {
	if db == nil {
		return invitationstore.NewInMemoryStore()
	}
	return invitationstore.NewPostgresStore(db)
}

func newItemStore(db *sql.DB) item.Store {
	if db == nil {
		return item.NewInMemoryStore()
	}
	return item.NewPostgresStore(db)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
