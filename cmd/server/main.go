package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	internalserver "github.com/orgkit/presence/internal/server"

	"github.com/orgkit/presence/modules"
	backupservices "github.com/orgkit/presence/modules/backup/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if conf.MigrateOnStart {
		if err := app.Migrations().Apply(context.Background()); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}

	srv, err := internalserver.Default(&internalserver.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	workerCtx, stopWorkers := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopWorkers()

	if conf.Backup.Enabled {
		worker := app.Service(backupservices.BackupWorker{}).(*backupservices.BackupWorker)
		go func() {
			if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.WithError(err).Error("backup worker stopped")
			}
		}()
	}

	logger.Info(fmt.Sprintf("listening on %s", conf.SocketAddress))
	if err := srv.Start(conf.SocketAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
