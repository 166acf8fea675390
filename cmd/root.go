package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chrisdamba/backoffice/internal/cloudwriter"
	"github.com/chrisdamba/backoffice/internal/inventory"
	"github.com/chrisdamba/backoffice/internal/invoices"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/chrisdamba/backoffice/internal/orders"
	"github.com/chrisdamba/backoffice/internal/repositories"
	"github.com/chrisdamba/backoffice/internal/repositories/memory"
	"github.com/chrisdamba/backoffice/internal/repositories/postgres"
	"github.com/chrisdamba/backoffice/internal/webhook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Inventory ledger and order back office for a restaurant and coffee shop",
	Long: `backoffice keeps the ingredient ledger of a restaurant and its coffee bar,
sends orders to the kitchen automation webhook, books the stock they consume
and produces end-of-day Z reports.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./backoffice.yaml or $HOME/backoffice.yaml)")
	rootCmd.PersistentFlags().String("store", "postgres", "Storage backend: postgres or memory")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format: json or console")

	viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, zreportCmd, alertsCmd, exportCmd, ledgerCmd, invoicesCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg       *models.Config
	logger    *zap.Logger
	store     repositories.Store
	cloud     cloudwriter.CloudWriterFactory
	inventory *inventory.Service
	invoices  *invoices.Service
	orders    *orders.Coordinator
}

func newLogger(cfg models.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func newStore(ctx context.Context, cfg *models.Config) (repositories.Store, error) {
	if cfg.Store == "memory" {
		return memory.NewStore(), nil
	}
	return postgres.NewStore(ctx, cfg.Database)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	cloud, err := newCloudWriterFactory(ctx, cfg.CloudStorage)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	logger.Debug("configuration loaded",
		zap.String("store", cfg.Store),
		zap.String("config_file", viper.ConfigFileUsed()),
	)
	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		cloud:     cloud,
		inventory: inventory.NewService(store, logger),
		invoices:  invoices.NewService(store, cloud, cfg.CloudStorage.BucketName, logger),
		orders: orders.NewCoordinator(store, webhook.NewClient(cfg.Webhook, logger), orders.Options{
			ShopName:    cfg.ShopName,
			TicketScope: cfg.TicketScope,
			Location:    cfg.Location(),
		}, logger),
	}, nil
}

// newCloudWriterFactory returns nil for the local provider.
func newCloudWriterFactory(ctx context.Context, cfg models.CloudStorageConfig) (cloudwriter.CloudWriterFactory, error) {
	switch cfg.Provider {
	case "", "local":
		return nil, nil
	case "s3":
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		return factory, nil
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Provider)
	}
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Sync()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// businessUnits expands an empty flag to both units.
func businessUnits(flag string) ([]models.BusinessUnit, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return []models.BusinessUnit{models.BusinessUnitRestaurant, models.BusinessUnitCoffee}, nil
	}
	bu := models.BusinessUnit(flag)
	if !bu.Valid() {
		return nil, models.ErrInvalidBusinessUnit
	}
	return []models.BusinessUnit{bu}, nil
}

func today(loc *time.Location) string {
	return time.Now().In(loc).Format("2006-01-02")
}
