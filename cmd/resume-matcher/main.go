package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-matcher/internal/api/handler"
	"resume-matcher/internal/api/router"
	"resume-matcher/internal/config"
	"resume-matcher/internal/ingest"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/outbox"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/storage"
	"resume-matcher/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	logger.Init(cfg.Logger)
	hlog.SetLogger(hertzzerolog.From(logger.Logger))
	log := logger.Named("main")
	log.Info().Str("config", configPath).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, logger.Named("tracing"))
	if err != nil {
		log.Warn().Err(err).Msg("初始化链路追踪失败，继续运行")
		shutdownTracing = func(context.Context) error { return nil }
	}

	st, err := storage.NewStorage(ctx, cfg, logger.Named("storage"))
	if err != nil {
		log.Warn().Err(err).Msg("存储不可用，仅提供无状态接口")
		st = &storage.Storage{}
	}
	defer st.Close()

	var procOpts []processor.FromConfigOption
	if st.Redis != nil {
		procOpts = append(procOpts, processor.WithVectorCache(st.Redis))
	}
	proc, err := processor.NewFromConfig(ctx, cfg, logger.Named, procOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化简历处理器失败")
	}

	handlerOpts := []handler.Option{
		handler.WithMaxUploadMB(cfg.Server.MaxUploadMB),
		handler.WithLogger(logger.Named("api")),
	}
	if repo := st.Repository(); repo != nil {
		handlerOpts = append(handlerOpts, handler.WithRepository(repo))
	}
	if st.Redis != nil {
		handlerOpts = append(handlerOpts, handler.WithJDCache(st.Redis))
	}

	var relay *outbox.MessageRelay
	if st.MySQL != nil && st.RabbitMQ != nil && st.MinIO != nil {
		st.MySQL.UseEventRouting(storage.EventRoutingFromConfig(cfg.RabbitMQ))
		if err := st.RabbitMQ.EnsureTopology(); err != nil {
			log.Fatal().Err(err).Msg("声明RabbitMQ拓扑失败")
		}

		relay = outbox.NewMessageRelay(st.MySQL.DB(), st.RabbitMQ, &cfg.Outbox, logger.Named("outbox"))
		relay.Start(ctx)

		var uploadOpts []ingest.UploadOption
		var workerOpts []ingest.WorkerOption
		if st.Redis != nil {
			uploadOpts = append(uploadOpts, ingest.WithDeduper(st.Redis))
			workerOpts = append(workerOpts, ingest.WithWorkerDeduper(st.Redis))
		}
		uploadOpts = append(uploadOpts, ingest.WithUploadLogger(logger.Named("upload")))
		workerOpts = append(workerOpts, ingest.WithWorkerLogger(logger.Named("extraction-worker")))

		uploader := ingest.NewUploadService(st.MinIO, st.MySQL, st.RabbitMQ,
			cfg.RabbitMQ.ResumeEventsExchange, cfg.RabbitMQ.UploadedRoutingKey, uploadOpts...)
		handlerOpts = append(handlerOpts, handler.WithUploader(uploader))

		worker := ingest.NewExtractionWorker(st.MinIO, st.MySQL, proc, workerOpts...)
		if _, err := st.RabbitMQ.StartConsumer(ctx, cfg.RabbitMQ.ExtractionQueue, cfg.RabbitMQ.PrefetchCount, worker.Handle); err != nil {
			log.Fatal().Err(err).Msg("启动提取消费者失败")
		}
		log.Info().Str("queue", cfg.RabbitMQ.ExtractionQueue).Msg("异步提取已启用")
	} else {
		log.Info().Msg("MySQL、RabbitMQ或MinIO未就绪，异步上传不可用")
	}

	maxBody := cfg.Server.MaxUploadMB
	if maxBody <= 0 {
		maxBody = 10
	}
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize((maxBody+1)<<20),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h.Engine, handler.New(proc, handlerOpts...), router.Options{
		APIKey: cfg.Auth.APIKey,
		Logger: logger.Named("access"),
	})

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器启动")
		if err := h.Run(); err != nil {
			log.Error().Err(err).Msg("HTTP服务器退出")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("接收到终止信号，正在优雅退出...")

	cancel()
	if relay != nil {
		relay.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("服务器关闭失败")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("关闭链路追踪失败")
	}
	log.Info().Msg("优雅退出完成")
}
