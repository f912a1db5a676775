package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MarkoPoloResearchLab/roomdesk/internal/httpapi"
	"github.com/MarkoPoloResearchLab/roomdesk/internal/sink/elastic"
	"github.com/MarkoPoloResearchLab/roomdesk/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/roomdesk/pkg/booking"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	flagDatabaseURL    = "database-url"
	flagListenAddr     = "listen-addr"
	flagSearchNode     = "search-node"
	flagSearchUsername = "search-username"
	flagSearchPassword = "search-password"
	flagAllowedOrigins = "allowed-origins"

	configKeyDatabaseURL    = "database_url"
	configKeyListenAddr     = "listen_addr"
	configKeySearchNode     = "search_node"
	configKeySearchUsername = "search_username"
	configKeySearchPassword = "search_password"
	configKeyAllowedOrigins = "allowed_origins"

	defaultDatabaseURL    = "sqlite:///tmp/roomdesk.db"
	defaultListenAddr     = ":3000"
	defaultSearchNode     = "http://localhost:9200"
	defaultSearchUsername = "elastic"
	defaultSearchPassword = "password"
)

type runtimeConfig struct {
	DatabaseURL    string
	ListenAddr     string
	SearchNode     string
	SearchUsername string
	SearchPassword string
	AllowedOrigins string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "roomdesk: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "roomdesk",
		Short:         "Room booking HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "PostgreSQL or sqlite connection string")
	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().String(flagSearchNode, defaultSearchNode, "activity search node URL")
	cmd.Flags().String(flagSearchUsername, defaultSearchUsername, "activity search node username")
	cmd.Flags().String(flagSearchPassword, defaultSearchPassword, "activity search node password")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated CORS origins (default allows all)")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	envBindings := map[string]string{
		configKeyDatabaseURL:    "DATABASE_URL",
		configKeyListenAddr:     "LISTEN_ADDR",
		configKeySearchNode:     "SEARCH_NODE",
		configKeySearchUsername: "SEARCH_USERNAME",
		configKeySearchPassword: "SEARCH_PASSWORD",
		configKeyAllowedOrigins: "ALLOWED_ORIGINS",
	}
	for key, envName := range envBindings {
		if err := viper.BindEnv(key, envName); err != nil {
			return err
		}
	}

	flagBindings := map[string]string{
		configKeyDatabaseURL:    flagDatabaseURL,
		configKeyListenAddr:     flagListenAddr,
		configKeySearchNode:     flagSearchNode,
		configKeySearchUsername: flagSearchUsername,
		configKeySearchPassword: flagSearchPassword,
		configKeyAllowedOrigins: flagAllowedOrigins,
	}
	for key, flagName := range flagBindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = viper.GetString(configKeyDatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	cfg.ListenAddr = viper.GetString(configKeyListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	cfg.SearchNode = viper.GetString(configKeySearchNode)
	if cfg.SearchNode == "" {
		cfg.SearchNode = defaultSearchNode
	}
	cfg.SearchUsername = viper.GetString(configKeySearchUsername)
	cfg.SearchPassword = viper.GetString(configKeySearchPassword)
	cfg.AllowedOrigins = viper.GetString(configKeyAllowedOrigins)

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen addr is required")
	}
	if cfg.SearchNode == "" {
		return fmt.Errorf("search node is required")
	}
	return nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, driver, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer cleanup()

	if err := prepareSchema(gormDB, driver); err != nil {
		return err
	}

	store := gormstore.New(gormDB)

	sink := elastic.NewSink(elastic.Config{
		Node:     cfg.SearchNode,
		Username: cfg.SearchUsername,
		Password: cfg.SearchPassword,
	}, logger)
	if err := sink.Ping(ctx); err != nil {
		logger.Warn("activity search node unreachable", zap.Error(err))
	} else {
		logger.Info("activity search node connected", zap.String("node", cfg.SearchNode))
	}

	clock := func() int64 { return time.Now().UTC().Unix() }
	bookingService, err := booking.NewService(store, clock, booking.WithActivityRecorder(sink))
	if err != nil {
		return fmt.Errorf("booking service init: %w", err)
	}

	apiConfig := httpapi.Config{
		ListenAddr:     cfg.ListenAddr,
		AllowedOrigins: httpapi.ParseAllowedOrigins(cfg.AllowedOrigins),
	}
	if err := apiConfig.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	return httpapi.Run(ctx, apiConfig, bookingService, logger)
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, string, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, "", err
	}

	var db *gorm.DB
	cfg := &gorm.Config{}
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), cfg)
	default:
		return nil, nil, "", fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, "", err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, "", err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, driver, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "roomdesk.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

func prepareSchema(db *gorm.DB, driver string) error {
	if driver != "sqlite" {
		return nil
	}
	if err := db.AutoMigrate(&gormstore.Room{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
