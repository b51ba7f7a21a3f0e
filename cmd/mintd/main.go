package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beastmint/mintd/internal/config"
	httpservice "github.com/beastmint/mintd/internal/interface/http"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Version will be set during build time
var Version string

func mainAction(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	svcConfig := httpservice.Config{
		Port:        cfg.Port,
		CorsOrigins: cfg.CorsOrigins,
	}

	svc, err := httpservice.NewService(Version, svcConfig, cfg)
	if err != nil {
		return err
	}

	log.Infof("mintd config: %s", cfg)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return err
	}

	log.RegisterExitHandler(svc.Stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)

	return nil
}

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "mintd"
	app.Usage = "generate, publish and mint nfts on ton, and move the owner's assets"
	app.UsageText = "Run the daemon, or talk to a running one through its subcommands"
	app.Commands = append(app.Commands,
		configCmd,
		mintCmd,
		statusCmd,
		recordCmd,
		refreshCmd,
		sendNftCmd,
		sendJettonCmd,
		walletCmd,
	)
	app.Flags = config.Flags
	app.Action = mainAction

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
