package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"base62num.local/gee"
	"base62num.local/gee/middleware"
	slcache "base62num.local/internal/app/shortlink/cache"
	"base62num.local/internal/app/shortlink/httpapi"
	"base62num.local/internal/app/shortlink/repo"
	"base62num.local/internal/app/shortlink/stats"
	"base62num.local/internal/platform/auth"
	platformcache "base62num.local/internal/platform/cache"
	"base62num.local/internal/platform/config"
	"base62num.local/internal/platform/db"
	"base62num.local/internal/platform/httpmiddleware"
	"base62num.local/internal/platform/httpserver"
	"base62num.local/internal/platform/metrics"
	"base62num.local/internal/platform/migrate"
	"base62num.local/internal/platform/ratelimit"
	"base62num.local/internal/platform/trace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// 布隆过滤器定期重建，收敛其它实例新建的 id
const bloomRefreshInterval = 10 * time.Minute

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h).With("service", cfg.ServiceName)
}

func main() {
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	// DB
	dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dbPool, err := db.New(dbCtx, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()
	slog.Info("database connected")

	res, err := migrate.Up(dbCtx, dbPool, migrate.Options{Dir: cfg.MigrationsDir})
	if err != nil {
		log.Fatal(err)
	}
	slog.Info("migrations done", "dir", res.Dir, "applied", len(res.Applied), "skipped", len(res.Skipped))

	// Redis
	redisClient, err := platformcache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	var limiter httpmiddleware.Allower
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewLimiter(redisClient)
	} else {
		slog.Warn("rate limit disabled by config", "RATELIMIT_ENABLED", false)
	}

	// 缓存 + 布隆过滤器
	localCache, err := slcache.NewLocalCache(cfg.LocalCacheItems)
	if err != nil {
		log.Fatal(err)
	}
	linkCache := slcache.NewLinkCache(redisClient, localCache)
	defer linkCache.Close()
	bloomFilter := slcache.NewBloomFilter(cfg.BloomExpectedItems, 0.01)
	bloomFilter.SetSafetyMargin(cfg.BloomSafetyMargin)

	links := repo.NewLinksRepo(dbPool, linkCache, bloomFilter)
	if err := links.WarmBloom(dbCtx); err != nil {
		// 没预热时 ceiling 为 0，过滤器不拒绝任何 id，只是少了一层保护
		slog.Error("bloom warm failed", "err", err)
	}

	// 点击统计：Kafka 或进程内 channel
	sink := stats.NewPGSink(dbPool)
	var (
		collector       stats.Collector
		kafkaConsumer   *stats.KafkaConsumer
		channelConsumer *stats.Consumer
	)
	if cfg.KafkaEnabled {
		slog.Info("click stats via kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		collector = stats.NewKafkaCollector(cfg.KafkaBrokers, cfg.KafkaTopic)
		kafkaConsumer = stats.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, sink)
	} else {
		slog.Info("click stats via channel")
		ch := stats.NewChannelCollector(10000)
		collector = ch
		channelConsumer = stats.NewConsumer(sink, ch)
	}

	ts, err := auth.NewHS256Service(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		log.Fatal(err)
	}

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown := trace.InitTrace(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName)
		if shutdown == nil {
			slog.Error("trace init failed")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error("trace shutdown failed", "err", err)
				}
			}()
		}
	} else {
		slog.Warn("tracing disabled by config", "TRACING_ENABLED", false)
	}

	// 对外业务
	r := gee.New()
	r.Use(gee.Recovery(), middleware.ReqID(), middleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName())

	deps := httpapi.Deps{
		Links:     links,
		Collector: collector,
		Limiter:   limiter,
		Tokens:    ts,
		BaseURL:   cfg.BaseURL,
	}
	httpapi.RegisterAPIRoutes(r.Group("/api/v1"), deps)
	httpapi.RegisterPublicRoutes(r, deps)
	publicHandler := http.Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(r, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)
	adminSrv := httpserver.NewAdmin(cfg, newAdminMux(cfg, links))

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 2)
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(publicSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(adminSrv, cfg.ShutdownTimeout, stopCtx)
	}()

	var bg workers
	if kafkaConsumer != nil {
		bg.Go(stopCtx, kafkaConsumer.Run)
		defer kafkaConsumer.Close()
	}
	if channelConsumer != nil {
		bg.Go(stopCtx, channelConsumer.Run)
	}
	bg.Go(stopCtx, func(ctx context.Context) { refreshBloom(ctx, links) })

	// 后注册先执行：消费者最后一批落库之后才轮到 dbPool.Close
	drain := func() {
		collector.Close()
		if !bg.Wait(cfg.ShutdownTimeout) {
			slog.Warn("background workers did not stop in time", "timeout", cfg.ShutdownTimeout)
		}
	}
	defer drain()

	err = <-errch
	stop()
	if err != nil {
		select {
		case <-errch:
		case <-time.After(cfg.ShutdownTimeout + time.Second):
		}
		drain()
		log.Fatal(err)
	}
	<-errch
}

func refreshBloom(ctx context.Context, links *repo.LinksRepo) {
	ticker := time.NewTicker(bloomRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			warmCtx, cancel := context.WithTimeout(ctx, time.Minute)
			if err := links.WarmBloom(warmCtx); err != nil {
				slog.Error("bloom refresh failed", "err", err)
			}
			cancel()
		}
	}
}
