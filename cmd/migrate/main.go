package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/di"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/pkg/config"
	"github.com/SaicharanT-tech/eventra/pkg/database"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "print embedded migrations and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	if *list {
		migrations, err := repository.Migrations()
		if err != nil {
			log.Fatalf("Failed to read migrations: %v", err)
		}
		for _, m := range migrations {
			fmt.Println(m.Version)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(di.LoggerConfig(cfg, "migrate")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, di.PostgresConfig(cfg))
	if err != nil {
		appLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	applied, err := repository.Migrate(ctx, db.Pool(), appLog)
	if err != nil {
		appLog.Fatal("Migration failed", zap.Error(err))
	}
	if len(applied) == 0 {
		appLog.Info("Schema is up to date")
		return
	}
	appLog.Info("Migrations applied", zap.Strings("versions", applied))
}
