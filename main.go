package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"sjsage522/divulgador/config"
	"sjsage522/divulgador/helpers"
	"sjsage522/divulgador/internal/auth"
	"sjsage522/divulgador/internal/bot"
	"sjsage522/divulgador/internal/link"
	"sjsage522/divulgador/internal/lookup"
	"sjsage522/divulgador/internal/shopee"
	"sjsage522/divulgador/logger"
	"sjsage522/divulgador/metrics"
	"sjsage522/divulgador/services/cache"
	"sjsage522/divulgador/services/publisher"
)

// pollTimeout is the Telegram long polling timeout in seconds
const pollTimeout = 60

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	signer, err := auth.NewSigner(cfg.PartnerID, cfg.PartnerKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid partner credentials")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("api_url", cfg.APIBaseURL).
		Bool("affiliate", cfg.AffiliateEnabled).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	log.Info().Str("username", botAPI.Self.UserName).Msg("Authorized on Telegram")

	b := bot.New(botAPI, newLookupService(cfg, signer, services.Cache),
		bot.WithPublisher(services.Publisher),
		bot.WithShortDomains(cfg.ShortLinkDomains),
		bot.WithHandlerTimeout(cfg.HandlerTimeout),
		bot.WithSearchLimit(cfg.SearchLimit),
	)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return b.Run(gctx, updates)
	})

	g.Go(func() error {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-gctx.Done():
		}
		botAPI.StopReceivingUpdates()
		return nil
	})

	if cfg.MetricsAddr != "" {
		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Exited with error")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// newLookupService wires the normalizer and the marketplace client. A nil
// cacheSvc disables the rate-limit block marker.
func newLookupService(cfg *config.Config, signer *auth.Signer, cacheSvc cache.CacheService) *lookup.Service {
	httpClient := helpers.NewHTTPClient(cfg.HTTPTimeout)

	normalizer := link.NewNormalizer(link.NewHTTPResolver(httpClient), cfg.ShortLinkDomains)

	opts := []shopee.Option{shopee.WithHTTPClient(httpClient)}
	if cacheSvc != nil {
		opts = append(opts, shopee.WithCache(cacheSvc))
	}
	client := shopee.NewClient(cfg, signer, opts...)

	return lookup.NewService(normalizer, client, lookup.WithSearchLimit(cfg.SearchLimit))
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices connects the services that are configured. An
// unreachable service is logged and left disabled.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr, cfg.HTTPTimeout)
		if err := cacheService.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unavailable, rate-limit blocking disabled")
		} else {
			services.Cache = cacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher, err := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err != nil {
			logger.ForPublisher().Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, lookups will not be published")
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services
}
