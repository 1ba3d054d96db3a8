package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/npezzotti/go-hostly/internal/api"
	"github.com/npezzotti/go-hostly/internal/blobstore"
	"github.com/npezzotti/go-hostly/internal/config"
	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/live"
	"github.com/npezzotti/go-hostly/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, config.SplitList(value)...)
	return nil
}

func loadSettings(logger *log.Logger) config.Settings {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Fatal("load .env:", err)
	}

	settings := config.DefaultSettings()
	if path, ok := os.LookupEnv(config.EnvPrefix + "CONFIG"); ok {
		if err := config.LoadFile(path, &settings); err != nil {
			logger.Fatal("config:", err)
		}
	}
	if err := config.LoadEnv(os.LookupEnv, &settings); err != nil {
		logger.Fatal("config:", err)
	}

	var origins stringSliceFlag
	flag.StringVar(&settings.ServerAddr, "addr", settings.ServerAddr, "server address")
	flag.StringVar(&settings.DatabaseDSN, "dsn", settings.DatabaseDSN, "database connection string")
	flag.StringVar(&settings.SigningKey, "signing-key", settings.SigningKey, "base64 encoded signing key")
	flag.Var(&origins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.StringVar(&settings.UploadDir, "upload-dir", settings.UploadDir, "directory for uploaded listing photos")
	flag.StringVar(&settings.PublicURL, "public-url", settings.PublicURL, "externally visible base URL")
	flag.StringVar(&settings.S3Bucket, "s3-bucket", settings.S3Bucket, "store listing photos in this S3 bucket")
	flag.StringVar(&settings.S3Region, "s3-region", settings.S3Region, "region of the S3 bucket")
	flag.Float64Var(&settings.MessageRate, "message-rate", settings.MessageRate, "messages per second allowed per user")
	flag.IntVar(&settings.MessageBurst, "message-burst", settings.MessageBurst, "message burst allowed per user")
	flag.BoolVar(&settings.Migrate, "migrate", settings.Migrate, "apply database migrations on startup")
	flag.Parse()

	if len(origins) > 0 {
		settings.AllowedOrigins = origins
	}

	return settings
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	if cfg.S3Bucket != "" {
		return blobstore.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
	}

	return blobstore.NewLocalStore(cfg.UploadDir, cfg.PublicURL+"/uploads")
}

func main() {
	logger := log.New(os.Stderr, "[hostly] ", log.LstdFlags)

	cfg, err := config.NewConfig(loadSettings(logger))
	if err != nil {
		logger.Fatal("config:", err)
	}

	conn, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}

	if cfg.Migrate {
		logger.Println("applying migrations...")
		if err := database.Migrate(conn); err != nil {
			logger.Fatal("db migrate:", err)
		}
	}

	repo := database.NewPgMarketplaceRepository(conn)
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Println("db close:", err)
		}
	}()

	blobs, err := newBlobStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("blob store:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)
	for _, name := range []string{
		stats.ListingsCreated,
		stats.ThreadsCreated,
		stats.MessagesSent,
		stats.LiveConnections,
	} {
		statsUpdater.RegisterMetric(name)
	}

	hub := live.NewHub(logger, statsUpdater)

	srv := api.NewHostlyApp(mux, logger, hub, repo, statsUpdater, blobs, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go hub.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Println("HTTP server shutdown:", err)
	}

	hub.Shutdown()

	logger.Println("shutdown complete")
}
