package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/provlabs/classifyd/internal/config"
	"github.com/provlabs/classifyd/internal/interface/web"
	"github.com/provlabs/classifyd/internal/interface/web/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Populated at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:  "classifyd",
		Usage: "asset classification service",
		Flags: []cli.Flag{
			config.Datadir,
			config.Port,
			config.LogLevel,
			config.DbType,
			config.BaseName,
			config.AdminAddress,
			config.IsTest,
			config.BindBaseName,
			config.DefinitionsFile,
			config.WatchInterval,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}
	cfg.Version = version
	cfg.Commit = commit

	log.SetLevel(log.Level(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}
	defer cfg.RepoManager().Close()

	svc, err := cfg.AppService()
	if err != nil {
		return fmt.Errorf("failed to create app service: %s", err)
	}
	adminSvc, err := cfg.AdminService()
	if err != nil {
		return fmt.Errorf("failed to create admin service: %s", err)
	}

	if err := svc.Bootstrap(c.Context); err != nil {
		return fmt.Errorf("failed to bootstrap: %s", err)
	}

	pendingWatcher, err := cfg.WatcherService()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %s", err)
	}
	if pendingWatcher != nil {
		if err := pendingWatcher.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %s", err)
		}
		defer pendingWatcher.Stop()
	}

	router := web.NewRouter(svc, adminSvc, metrics.New())
	server := web.NewServer(fmt.Sprintf(":%d", cfg.Port), router)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()
	log.Infof("classifyd listens on: %d", cfg.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %s", err)
	case <-sigChan:
	}

	log.Info("shutting down service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("failed to shut down server gracefully")
	}
	return nil
}
