package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"airdrop-service/internal/config"
	"airdrop-service/internal/infra/database"
	"airdrop-service/internal/infra/gateway"
	"airdrop-service/internal/infra/repository"
	"airdrop-service/internal/metrics"
	"airdrop-service/internal/present/rest"
	"airdrop-service/internal/service"
	"airdrop-service/internal/usecase"
)

func main() {
	godotenv.Load()

	configPath := os.Getenv("AIRDROP_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	recordRepo := repository.NewAirdropRecordRepository(db)
	lease := repository.NewRedisClaimLease(rdb)

	transferGW, err := gateway.NewEvmTransferGateway(ctx, conf.Chain.RPCURL, conf.Chain.TokenAddress, conf.Chain.SenderPrivateKey)
	if err != nil {
		slog.Error("failed to set up transfer gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}
	identityGW := gateway.NewIdentityGateway(conf.Services.IdentityVerifierURL)
	geoGW := gateway.NewGeolocationGateway(conf.Services.GeolocationURL)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	signal := service.NewSignalService(rdb)

	evaluator := usecase.NewEligibilityEvaluator(identityGW, geoGW, usecase.EligibilityParams{
		MinXPPoints:      conf.Campaign.MinXPPoints,
		Cutoff:           conf.Campaign.Cutoff,
		BlockedCountries: conf.Campaign.BlockedCountries,
		ActivityXPPoints: conf.Campaign.ActivityXPPoints,
	})

	rewards := make(usecase.RewardSchedule, 0, len(conf.Campaign.RewardTiers))
	for _, tier := range conf.Campaign.RewardTiers {
		rewards = append(rewards, usecase.RewardTier{
			MinXPPoints: tier.MinXPPoints,
			TokenAmount: tier.TokenAmount,
		})
	}

	registerUC := usecase.NewRegisterUsecase(recordRepo, evaluator, rewards, conf.Campaign.Closes, signal, m)
	claimUC := usecase.NewClaimUsecase(recordRepo, transferGW, lease, signal, m, usecase.ClaimConfig{
		ExplorerTxURL: conf.Chain.ExplorerTxURL,
		LeaseTTL:      conf.Services.LeaseTTL,
		PollInterval:  conf.Chain.PollInterval,
		PollTimeout:   conf.Chain.PollTimeout,
		Closes:        conf.Campaign.Closes,
	})
	statusUC := usecase.NewStatusUsecase(recordRepo, conf.Chain.ExplorerTxURL)

	reconciler := service.NewReconciler(claimUC, conf.Services.Reconcile, conf.Services.ReconcileBatchSize)
	if err := reconciler.Start(ctx); err != nil {
		slog.Error("failed to start reconciler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer reconciler.Stop()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
		e.Use(otelecho.Middleware("airdrop-service"))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handler := rest.NewHandler(registerUC, claimUC, statusUC, signal, conf.Campaign.SignedMessage)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(ctx context.Context, endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(semconv.ServiceName("airdrop-service")),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Warn("failed to shut down trace provider", slog.String("error", err.Error()))
		}
	}, nil
}
