package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nebulapoi/poi-gateway/internal/api"
	"github.com/nebulapoi/poi-gateway/internal/api/middleware"
	cfgpkg "github.com/nebulapoi/poi-gateway/internal/config"
	"github.com/nebulapoi/poi-gateway/internal/gateway"
	"github.com/nebulapoi/poi-gateway/internal/health"
	"github.com/nebulapoi/poi-gateway/internal/httpserver"
	"github.com/nebulapoi/poi-gateway/internal/logging"
	"github.com/nebulapoi/poi-gateway/internal/metrics"
	"github.com/nebulapoi/poi-gateway/internal/outbound"
	"github.com/nebulapoi/poi-gateway/internal/session"
	"github.com/nebulapoi/poi-gateway/internal/storage/gormrepo"
	"github.com/nebulapoi/poi-gateway/internal/storage/pg"
	redisstore "github.com/nebulapoi/poi-gateway/internal/storage/redis"
	"github.com/nebulapoi/poi-gateway/internal/storage/seed"
	"github.com/nebulapoi/poi-gateway/internal/tcpserver"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	metricsHandler := metrics.Handler(reg)
	appm := metrics.NewAppMetrics(reg)

	// 4) 存储：gorm（模型与迁移）+ pgx（下行队列热路径）
	gdb, err := gormrepo.Open(cfg.Database)
	if err != nil {
		log.Fatal("open database error", zap.Error(err))
	}
	repo := gormrepo.New(gdb)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	pool, err := pg.NewPool(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, log)
	if err != nil {
		cancel()
		log.Fatal("open pgx pool error", zap.Error(err))
	}
	if err := pg.EnsureQueueSchema(ctx, pool); err != nil {
		cancel()
		log.Fatal("ensure queue schema error", zap.Error(err))
	}
	queue := pg.NewQueueRepo(pool)

	// 5) 种子图案
	if cfg.Seed.Enable {
		if m, err := seed.Load(cfg.Seed.File); err != nil {
			log.Warn("seed manifest load failed", zap.String("file", cfg.Seed.File), zap.Error(err))
		} else if err := seed.Apply(ctx, m, repo); err != nil {
			log.Warn("seed apply failed", zap.Error(err))
		} else {
			log.Info("seed patterns applied", zap.Int("count", len(m.Patterns)))
		}
	}
	cancel()

	// 6) 会话管理：Redis 开启时用 Redis，否则内存实现
	var sess session.SessionManager
	var redisClient *redisstore.Client
	if cfg.Redis.Enabled {
		rc, err := redisstore.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal("redis connect error", zap.Error(err))
		}
		defer func() { _ = rc.Close() }()
		redisClient = rc
		sess = session.NewRedisManager(rc.Client, "", cfg.Session.HeartbeatTimeout)
		log.Info("session manager: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		sess = session.New(cfg.Session.HeartbeatTimeout)
		log.Info("session manager: memory")
	}

	// 7) TCP 网关与连接处理器
	gw := gateway.NewHandler(sess, repo, appm, log, cfg.Session.HeartbeatTimeout)
	tcpSrv := tcpserver.New(cfg.TCP)
	tcpSrv.SetLogger(log)
	tcpSrv.SetOnConn(gw.OnConn)
	tcpSrv.SetMetricsCallbacks(
		func() { appm.TCPAccepted.Inc() },
		func(n int) { appm.TCPBytesReceived.Add(float64(n)) },
	)

	// 8) 下行队列消费者
	worker := outbound.New(pool, gw)
	worker.Interval = cfg.Outbound.Interval
	worker.BatchSize = cfg.Outbound.BatchSize
	worker.Throttle = cfg.Outbound.Throttle
	worker.MaxRetries = cfg.Outbound.MaxRetries
	worker.Metrics = appm
	worker.Logger = log
	workerCtx, workerCancel := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	// 9) 健康检查聚合器与 HTTP 控制面
	agg := health.NewAggregator(
		health.NewDatabaseChecker(pool),
		health.NewTCPChecker(tcpSrv.Limiter()),
	)
	if redisClient != nil {
		agg.AddChecker(health.NewRedisChecker(redisClient))
	}

	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, func() bool {
		pctx, pcancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer pcancel()
		return agg.Ready(pctx)
	})
	health.RegisterHTTPRoutes(httpSrv.Engine(), agg)
	api.RegisterRoutes(httpSrv.Engine(), repo, queue, sess, middleware.AuthConfig{
		Enabled: cfg.Auth.Enabled,
		APIKeys: cfg.Auth.APIKeys,
	}, log)

	// 并行启动
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	if err := tcpSrv.Start(); err != nil {
		log.Fatal("tcp server start error", zap.Error(err))
	}
	log.Info("gateway started",
		zap.String("tcp", cfg.TCP.Addr),
		zap.String("http", cfg.HTTP.Addr))

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	workerCancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = httpSrv.Shutdown(shCtx)
	_ = tcpSrv.Shutdown(shCtx)
	pool.Close()
}
