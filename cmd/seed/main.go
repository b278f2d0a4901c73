package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/SaicharanT-tech/eventra/internal/di"
	"github.com/SaicharanT-tech/eventra/internal/repository"
	"github.com/SaicharanT-tech/eventra/internal/service"
	"github.com/SaicharanT-tech/eventra/pkg/config"
	"github.com/SaicharanT-tech/eventra/pkg/database"
	"github.com/SaicharanT-tech/eventra/pkg/logger"
)

func main() {
	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	tokensOnly := flag.Bool("tokens-only", false, "only print dev tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production environment")
	}
	if err := logger.Init(di.LoggerConfig(cfg, "seed")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !*tokensOnly {
		db, err := database.NewPostgres(ctx, di.PostgresConfig(cfg))
		if err != nil {
			appLog.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if *migrate {
			if _, err := repository.Migrate(ctx, db.Pool(), appLog); err != nil {
				appLog.Fatal("Migration failed", zap.Error(err))
			}
		}

		inventory := service.NewInventoryService(
			repository.NewPostgresVenueRepository(db.Pool()),
			repository.NewPostgresResourceRepository(db.Pool()),
			appLog,
		)
		res, err := seedInventory(ctx, inventory, appLog)
		if err != nil {
			appLog.Fatal("Seeding failed", zap.Error(err))
		}
		appLog.Info("Inventory seeded", zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	}

	ttl := cfg.JWT.AccessTokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	tokens, err := mintTokens(di.AuthConfig(cfg), ttl)
	if err != nil {
		appLog.Fatal("Failed to sign dev tokens", zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROLE\tUSER ID\tTOKEN")
	for _, t := range tokens {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.User.Name, t.User.Role, t.ID, t.Token)
	}
	_ = w.Flush()
}
