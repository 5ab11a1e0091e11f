package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/codestube/bot/internal/database"
	"github.com/codestube/bot/internal/discord"
	"github.com/codestube/bot/internal/events"
	"github.com/codestube/bot/internal/health"
	"github.com/codestube/bot/internal/logger"
	"github.com/codestube/bot/internal/moderation"
	"github.com/codestube/bot/internal/router"
	"github.com/codestube/bot/internal/service"
	"github.com/codestube/bot/internal/session"
	"github.com/knadh/koanf"
	"github.com/labstack/echo/v4"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg    string
	guilds []string
)

func main() {
	c := &coral.Command{
		Use:     "todobot",
		Short:   "Discord bot keeping a personal to-do list",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfg, "config", "c", "", "Configuration file")

	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(serverCmd)

	registerCmd.Flags().StringSliceVarP(&guilds, "guild", "g", nil, "Guild to register the commands in (global when omitted)")
	c.AddCommand(registerCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func newLogger(konf *koanf.Koanf) (*logrus.Logger, error) {
	return logger.New(logger.Options{
		Level:      konf.String("log.level"),
		File:       konf.String("log.file"),
		MaxSize:    konf.Int("log.max_size"),
		MaxBackups: konf.Int("log.max_backups"),
		MaxAge:     konf.Int("log.max_age"),
	})
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			return database.Init(databaseOptions(konf))
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the storm database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			opts := databaseOptions(konf)
			if !isStorm(opts) {
				return errors.Errorf("reindex is only supported by the %s driver", database.DriverStorm)
			}
			return database.StormReIndex(database.StormFile(opts.Path), opts.Codec)
		},
	}

	//
	registerCmd = &coral.Command{
		Use:   "register",
		Short: "Register the application commands",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			logr, err := newLogger(konf)
			if err != nil {
				return err
			}

			s, err := discord.NewSession(konf.String("discord.token"))
			if err != nil {
				return err
			}

			ctx := context.Background()
			me, err := s.User("@me")
			if err != nil {
				return errors.Wrap(err, "could not fetch bot user")
			}

			return discord.Register(ctx, s, me.ID, guilds, logr)
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Connect to Discord and start the health server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load(cfg)
			if err != nil {
				return err
			}

			logr, err := newLogger(konf)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := database.Open(databaseOptions(konf))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			publisher := events.Noop()
			if brokers := stringList(konf, "events.brokers"); len(brokers) > 0 {
				publisher = events.Async(
					events.NewKafka(brokers, konf.String("events.topic")),
					logr,
					konf.Int("events.queue_size"),
					konf.Duration("events.timeout"),
				)
				logr.WithField("brokers", strings.Join(brokers, ",")).Info("publishing todo events to kafka")
			}
			defer publisher.Close()

			store := session.NewMemoryStore()
			if url := konf.String("sessions.redis_url"); url != "" {
				client, err := session.RedisClient(ctx, url)
				if err != nil {
					return err
				}
				defer client.Close()
				store = session.NewRedisStore(client)
			}

			todos := service.NewTodoStore(db, publisher, logr)
			r := router.New(todos, session.NewManager(store, sessionTTL(konf)), logr)

			bot, err := discord.New(discordConfig(konf), r, moderation.New(moderationConfig(konf), logr), logr)
			if err != nil {
				return err
			}

			engine := health.EchoEngine(health.IOC{
				Version:  version,
				Database: db,
				Logger:   logr,
			})
			health.PrintRoutes(engine, logr)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return bot.Run(ctx)
			})
			g.Go(func() error {
				return serve(engine, konf.String("address"), logr)
			})
			g.Go(func() error {
				<-ctx.Done()

				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return errors.Wrap(engine.Shutdown(sctx), "could not stop health server")
			})

			return g.Wait()
		},
	}
)

// serve runs the health server on a TCP address or on a `unix:/path/to.sock` socket.
func serve(engine *echo.Echo, address string, logr logrus.FieldLogger) error {
	message := "could not run health server"
	logr.Infof("Health server listening on %s", address)

	var err error
	parts := strings.Split(address, ":")
	if len(parts) == 2 && parts[0] == "unix" {
		socketFile := parts[1]
		if _, err := os.Stat(socketFile); err == nil {
			logr.Infof("Removing existing %s", socketFile)
			os.Remove(socketFile)
		}
		defer os.Remove(socketFile)

		listener, lerr := net.Listen(parts[0], socketFile)
		if lerr != nil {
			return errors.Wrap(lerr, message)
		}
		err = engine.Server.Serve(listener)
	} else {
		err = engine.Start(address)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, message)
}
