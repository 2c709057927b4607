package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/http/server"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

func main() {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront web shop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed demo data, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			log.Printf("[migrate] %s schema ready", cfg.DBDriver)
			return db.Close()
		},
	}
}

func serveCmd() *cobra.Command {
	var accessLog bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the outbox relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(accessLog)
		},
	}
	cmd.Flags().BoolVar(&accessLog, "access-log", true, "log every request")
	return cmd
}

func serve(accessLog bool) error {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var locks lock.Locker = lock.NewLocal()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		locks = lock.NewRedis(rdb, 0)
		log.Printf("[lock] redis %s", cfg.RedisAddr)
	}

	var pub events.Publisher = events.LogPublisher{}
	if brokers := events.Brokers(cfg.KafkaBrokers); len(brokers) > 0 {
		pub = events.NewKafkaPublisher(brokers)
		log.Printf("[events] kafka %v topic=%s", brokers, cfg.OrderTopic)
	}
	defer pub.Close()

	m := metrics.New()
	app, _ := server.New(server.Options{Config: cfg, DB: db, Locks: locks, Metrics: m, AccessLog: accessLog})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	relay := events.NewRelay(repos.NewOutboxRepo(db), pub, m, cfg.OutboxInterval)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		_ = relay.Run(ctx)
	}()

	listenErr := make(chan error, 1)
	go func() {
		log.Printf("[http] listening on :%s", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err = <-listenErr:
		stop()
	case <-ctx.Done():
		log.Println("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = app.ShutdownWithContext(shutdownCtx)
	}
	<-relayDone
	return err
}
