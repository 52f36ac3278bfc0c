package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"travelpoint/internal/app/operator"
	"travelpoint/internal/domain/repository"
	"travelpoint/internal/platform/config"
	"travelpoint/internal/platform/database"
	"travelpoint/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()

	op := operator.New(repository.NewPgUserRepository(db), os.Stdout)
	if err := op.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, operator.ErrUsage) {
			fmt.Fprintln(os.Stderr, operator.Usage)
			db.Close()
			os.Exit(2)
		}
		log.WithError(err).Error("Command failed")
		db.Close()
		os.Exit(1)
	}
}
