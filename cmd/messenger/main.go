// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/client"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(orNA(buildVersion), orNA(buildDate), orNA(buildCommit))
	printBuildInfo(buildInfo)

	cfg, err := config.GetMessengerConfig()
	if err != nil {
		logger.NewLogger("messenger").Fatal().Err(err).Msg("error getting configs")
	}

	log, closer := logger.NewFileLogger("messenger", cfg.App.LogFile, logger.ParseLevel(cfg.App.LogLevel))
	defer closer.Close()

	log.Info().
		Str("version", buildInfo.BuildVersion()).
		Str("commit", buildInfo.BuildCommit()).
		Msg("starting messenger")

	app, err := client.NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init messenger app error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("messenger run error")
		closer.Close()
		os.Exit(1)
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
