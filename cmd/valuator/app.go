package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/app/provider"
	"portfolio_valuator/internal/app/service"
	"portfolio_valuator/internal/client"
	"portfolio_valuator/internal/infrastructure/configloader"
	rpcclient "portfolio_valuator/internal/infrastructure/network/client"
	"portfolio_valuator/internal/pkg/logger"
	"portfolio_valuator/internal/pkg/metrics"

	"go.uber.org/zap"
)

// application holds the wired dependency graph shared by all commands.
type application struct {
	cfg              *configloader.Config
	zapLogger        *zap.Logger
	appLogger        port.Logger
	rpc              *rpcclient.RPCClient
	portfolioService port.PortfolioService
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return configloader.DefaultConfigPath
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// newApplication загружает конфигурацию и собирает все зависимости.
func newApplication(ctx context.Context, configFlag string) (*application, error) {
	cfgPath := resolveConfigPath(configFlag)
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewSlogAdapter(logger.NewSlog(zapLogger, cfg.Logging.Level))
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	netDef := cfg.NetworkDefinition()
	rpc, err := rpcclient.NewRPCClient(
		ctx,
		netDef,
		millis(cfg.Network.RPCTimeoutMs),
		cfg.Network.RateLimit,
		cfg.Network.BurstLimit,
		zapLogger,
	)
	if err != nil {
		_ = zapLogger.Sync()
		return nil, err
	}
	zapLogger.Info("RPC client initialized",
		zap.String("network", netDef.Name),
		zap.Uint64("chainID", netDef.ChainID),
		zap.String("wrappedNative", netDef.WrappedNativeTokenAddress))

	indexer := client.NewIndexerClient(cfg.Indexer.BaseURL, millis(cfg.Indexer.RequestTimeoutMillis), zapLogger)
	metadata := provider.NewTokenMetadataProvider(
		indexer,
		time.Duration(cfg.Indexer.MetadataCacheTTLMinutes)*time.Minute,
		cfg.Valuation.DefaultDecimals,
		appLogger,
	)

	dexScreenerClient := client.NewDEXScreenerClient(cfg.DEXScreener.BaseURL, millis(cfg.DEXScreener.RequestTimeoutMillis), zapLogger)
	market := service.NewMarketDataService(
		service.NewDEXScreenerQuoteSource(dexScreenerClient, appLogger),
		netDef.WrappedNativeTokenAddress,
		cfg.Valuation,
		appLogger,
	)

	var margin port.MarginEquitySource
	if cfg.Margin.Enabled {
		margin = client.NewMarginClient(cfg.Margin.BaseURL, cfg.Margin.SubaccountName, millis(cfg.Margin.RequestTimeoutMillis), zapLogger)
		zapLogger.Info("Margin equity lookup enabled", zap.String("protocol", cfg.Margin.ProtocolName))
	}

	reader := service.NewContractReader(rpc)
	portfolioService := service.NewPortfolioService(
		service.NewBalanceCollector(rpc, indexer, uint8(netDef.Decimals), cfg.Valuation.DefaultDecimals, appLogger),
		market,
		service.NewLPDecomposer(reader, market, metadata, cfg.Valuation, appLogger),
		service.NewCreatorResolver(reader, cfg.Valuation.MaxConcurrentCalls, appLogger),
		margin,
		cfg.Margin,
		appLogger,
	)

	return &application{
		cfg:              cfg,
		zapLogger:        zapLogger,
		appLogger:        appLogger,
		rpc:              rpc,
		portfolioService: portfolioService,
	}, nil
}

func (a *application) close() {
	a.rpc.Close()
	_ = a.zapLogger.Sync()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}
