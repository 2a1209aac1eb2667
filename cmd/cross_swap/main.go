package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cross_swap/internal/app/cache"
	"cross_swap/internal/app/port"
	"cross_swap/internal/app/service"
	"cross_swap/internal/infrastructure/chainregistry"
	"cross_swap/internal/infrastructure/configloader"
	"cross_swap/internal/infrastructure/feeestimator"
	"cross_swap/internal/infrastructure/httpclient"
	"cross_swap/internal/infrastructure/restapi"
	"cross_swap/internal/infrastructure/tokencatalog"
	"cross_swap/internal/pkg/logger"
	"cross_swap/internal/pkg/metrics"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func main() {
	cfgPath := getEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	appLogger := logger.NewZapAdapter(zapLogger)

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	registry := chainregistry.NewRegistry(appLogger, cfg.RPCOverrides)

	catalog, err := tokencatalog.NewFileCatalog(cfg.Tokens.DirectoryPath, appLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load token catalog", zap.Error(err))
	}

	priceSource := httpclient.NewCoinGeckoClient(httpclient.Config{
		BaseURL:            cfg.CoinGecko.BaseURL,
		APIKey:             cfg.CoinGecko.APIKey,
		Timeout:            time.Duration(cfg.CoinGecko.RequestTimeoutMillis) * time.Millisecond,
		RetryCount:         cfg.CoinGecko.RetryCount,
		RetryDelay:         time.Duration(cfg.CoinGecko.RetryDelayMillis) * time.Millisecond,
		RateLimitPerSecond: cfg.CoinGecko.RateLimitPerSecond,
		RateBurst:          cfg.CoinGecko.RateBurst,
		PriceTTL:           time.Duration(cfg.CoinGecko.PriceTTLSeconds) * time.Second,
	}, zapLogger, nil)
	zapLogger.Info("Price source client initialized", zap.String("baseURL", cfg.CoinGecko.BaseURL))

	feeEstimator := buildFeeEstimator(cfg, registry, appLogger)
	zapLogger.Info("Fee estimator initialized",
		zap.String("mode", cfg.Fees.Mode),
		zap.Bool("fallbackToStatic", cfg.Fees.FallbackToStatic))

	quoteCache := cache.New(time.Duration(cfg.Quote.CacheDurationMillis) * time.Millisecond)
	quoteService := service.NewQuoteService(priceSource, feeEstimator, quoteCache, service.QuoteConfig{
		CacheDuration:         time.Duration(cfg.Quote.CacheDurationMillis) * time.Millisecond,
		SlippageTolerance:     decimal.NewFromFloat(cfg.Quote.SlippageTolerance),
		PriceImpactThreshold:  decimal.NewFromFloat(cfg.Quote.PriceImpactThreshold),
		ImpactCoefficient:     decimal.NewFromFloat(cfg.Quote.ImpactCoefficient),
		ImpactCap:             decimal.NewFromFloat(cfg.Quote.ImpactCap),
		DisableInFlightDedupe: cfg.Quote.DisableInFlightDedupe,
	}, appLogger)
	zapLogger.Info("Quote service initialized")

	handler := restapi.NewQuoteHandler(quoteService, registry, catalog)
	streamHandler := restapi.NewQuoteStreamHandler(
		quoteService,
		catalog,
		time.Duration(cfg.Requote.SettleMillis)*time.Millisecond,
		zapLogger,
		appLogger,
	)
	router := restapi.SetupRouter(handler, streamHandler, zapLogger, restapi.RouterOptions{
		SwaggerEnabled:  cfg.Swagger.Enabled,
		SwaggerSpecPath: "./docs/swagger.yaml",
	})
	if cfg.Swagger.Enabled {
		zapLogger.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}

// buildFeeEstimator assembles the estimator stack for the configured mode.
// Live mode wraps the RPC-backed estimator in the marked static fallback
// only when the operator opted in.
func buildFeeEstimator(cfg *configloader.Config, registry port.ChainRegistry, appLogger port.Logger) port.FeeEstimator {
	static := feeestimator.NewStaticEstimator(decimal.NewFromFloat(cfg.Fees.BaseFee), appLogger)
	if cfg.Fees.Mode != "live" {
		return static
	}

	live := feeestimator.NewLiveEstimator(
		registry,
		nil,
		time.Duration(cfg.Fees.RPCTimeoutMillis)*time.Millisecond,
		appLogger,
	)
	if cfg.Fees.FallbackToStatic {
		return feeestimator.NewFallbackEstimator(live, static, true, appLogger)
	}
	return live
}
