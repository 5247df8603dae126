// README: Entry point; loads config, wires pricing collaborators and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ridefare/internal/config"
	httptransport "ridefare/internal/http"
	"ridefare/internal/infra"
	"ridefare/internal/logger"
	"ridefare/internal/maps"
	"ridefare/internal/modules/merchant"
	"ridefare/internal/modules/quote"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		return errors.New("RIDEFARE_FIREBASE_PROJECT_ID is required")
	}
	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, app)
	if err != nil {
		return fmt.Errorf("firebase auth: %w", err)
	}
	fs, err := infra.NewFirestore(ctx, app)
	if err != nil {
		return fmt.Errorf("firestore: %w", err)
	}
	defer fs.Close()

	if cfg.DB.AutoMigrate {
		if err := infra.Migrate(cfg.DB.DSN, log); err != nil {
			return err
		}
	}
	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()

	configSource := merchant.NewCachedSource(merchant.NewFirestoreStore(fs), redisClient, cfg.Redis.ConfigTTL, log)
	merchantSvc := merchant.NewService(configSource, log)

	deps := quote.Deps{
		Store:     quote.NewStore(dbPool),
		Merchants: merchantSvc,
		Currency:  cfg.Pricing.Currency,
		Location:  cfg.Pricing.Location(),
		Log:       log,
	}
	if cfg.Maps.APIKey != "" {
		client, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			return fmt.Errorf("maps client: %w", err)
		}
		opts := maps.Options{APIKey: cfg.Maps.APIKey, Language: cfg.Maps.Language, Region: cfg.Maps.Region}
		deps.Distances = maps.NewCachedDistanceProvider(maps.NewRouteService(client, opts), redisClient, cfg.Redis.DistanceTTL, log)
		deps.Geocoder = maps.NewGeocodeService(client, opts)
	} else {
		log.Warn("maps api key not set; quotes require an explicit distance")
	}
	quoteSvc := quote.NewService(deps)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Quotes:   quoteSvc,
		Configs:  merchantSvc,
		Verifier: verifier,
		Log:      log,
	})

	return httptransport.NewServer(cfg.HTTP.Addr, router, log).Run(ctx)
}
