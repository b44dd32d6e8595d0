package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/Alwanly/attribute-poll/docs"
	"github.com/Alwanly/attribute-poll/internal/config"
	"github.com/Alwanly/attribute-poll/internal/metrics"
	"github.com/Alwanly/attribute-poll/internal/server/poll/handler"
	"github.com/Alwanly/attribute-poll/internal/store"
	"github.com/Alwanly/attribute-poll/internal/transport"
	"github.com/Alwanly/attribute-poll/pkg/attribute"
	authentication "github.com/Alwanly/attribute-poll/pkg/auth"
	"github.com/Alwanly/attribute-poll/pkg/database"
	"github.com/Alwanly/attribute-poll/pkg/deps"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/middleware"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/pubsub"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the poll engine and admin API",
	Long: `Run the poll engine, the resolver and the admin HTTP API until
interrupted. Configuration comes from the optional YAML file and the
environment; environment variables win.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "path to config file")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, err := logger.NewLoggerFromEnv("attribute-poll")
	if err != nil {
		return err
	}
	defer log.Sync()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		return err
	}
	log.Info("configuration loaded",
		logger.String("server_addr", cfg.Server.Addr),
		logger.String("database_path", cfg.Database.Path),
		logger.Uint32("backoff_seconds", cfg.Poll.BackoffSeconds),
		logger.Uint32("default_interval_seconds", cfg.Poll.DefaultIntervalSeconds),
		logger.AttributeType(cfg.Poll.MarkType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewSQLiteDB(cfg.Database.Path, gormlogger.Warn)
	if err != nil {
		log.WithError(err).Error("failed to initialize database")
		return err
	}
	defer func() {
		if conn, err := db.DB(); err == nil {
			_ = conn.Close()
		}
	}()
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Error("failed to migrate database")
		return err
	}
	if err := database.SeedInitialData(db); err != nil {
		log.WithError(err).Error("failed to seed database")
		return err
	}

	st, err := store.NewSQLStore(db)
	if err != nil {
		log.WithError(err).Error("failed to open attribute store")
		return err
	}
	engineCfg := cfg.PollEngine()
	if !engineCfg.PollMarkType.Reserved() {
		st.RegisterType(engineCfg.PollMarkType, "Poll Mark", attribute.InvalidType, attribute.StorageU8)
	}
	log.Info("attribute store ready", logger.Attribute(uint64(st.Root())))

	var (
		sink    resolver.Sink = resolver.LogSink{Logger: log.Component("resolve_sink")}
		mq, rd  pubsub.PubSub
		closers []pubsub.PubSub
	)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	if cfg.MQTTEnabled() {
		mq, err = pubsub.NewMQTTPubSub(ctx, pubsub.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			QoS:      cfg.MQTT.QoS,
			Retry:    cfg.Retry(),
		}, log.Component("mqtt"))
		if err != nil {
			log.WithError(err).Error("failed to initialize mqtt, continuing without it")
			mq = nil
		} else {
			closers = append(closers, mq)
			if cfg.MQTT.ResolveTopic != "" {
				sink = transport.NewPublishSink(mq, cfg.MQTT.ResolveTopic)
			}
		}
	}

	if cfg.RedisEnabled() {
		rd, err = pubsub.NewRedisPubSub(ctx, pubsub.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Retry:    cfg.Retry(),
		}, log.Component("redis"))
		if err != nil {
			log.WithError(err).Error("failed to initialize redis, continuing without it")
			rd = nil
		} else {
			closers = append(closers, rd)
		}
	}

	res := resolver.New(st, sink,
		resolver.WithLogger(log),
		resolver.WithObserver(metrics.ResolverObserver{}),
	)
	poller := poll.New(st, res, engineCfg,
		poll.WithLogger(log),
		poll.WithObserver(metrics.PollObserver{}),
	)
	defer poller.Close()

	var listeners []*transport.Listener
	if mq != nil {
		listeners = append(listeners, transport.NewListener(mq, poller, log, "mqtt", cfg.MQTT.CommandTopic))
	}
	if rd != nil {
		listeners = append(listeners, transport.NewListener(rd, poller, log, "redis", cfg.Redis.Channel))
	}

	app := fiber.New(fiber.Config{
		AppName:               "Attribute Poll",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.CanonicalLoggerMiddleware(log))

	handler.NewHandler(deps.App{
		Fiber:  app,
		Logger: log,
		Middleware: middleware.NewAuthMiddleware(middleware.SetBasicAuth(&authentication.BasicAuthTConfig{
			AdminUsername: cfg.Admin.Username,
			AdminPassword: cfg.Admin.Password,
		})),
		Store:  st,
		Poller: poller,
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	g, gCtx := errgroup.WithContext(ctx)

	// Subscribe before anything can mutate the store.
	triggers := st.Subscribe(resolver.Triggers)
	defer triggers.Close()
	g.Go(func() error {
		if err := res.Recover(gCtx); err != nil {
			return err
		}
		return res.Serve(gCtx, triggers.Changes())
	})

	if err := poller.Start(gCtx); err != nil {
		log.WithError(err).Error("failed to start poll engine")
		return err
	}

	for _, l := range listeners {
		l := l
		g.Go(func() error {
			return l.Run(gCtx)
		})
	}

	g.Go(func() error {
		log.Info("attribute poll service is running", logger.String("address", cfg.Server.Addr))
		return app.Listen(cfg.Server.Addr)
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("failed to shutdown fiber app")
		}
		return poller.Stop()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("attribute poll service encountered an error")
		return err
	}

	log.Info("attribute poll service stopped gracefully")
	return nil
}
