package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sigmaSd/rustman-database/internal/cli"
	"github.com/sigmaSd/rustman-database/internal/models"
	"github.com/sirupsen/logrus"
)

func main() {
	// Setup logging format
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := models.LoadConfig()
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(cfg)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}
