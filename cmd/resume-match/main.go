package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	appCoreLogger "resume-match-go/internal/logger"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			glog.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := shutdownTracer(shutdownCtx); err != nil {
				glog.Warnf("关闭链路追踪失败: %v", err)
			}
		}()
		glog.Info("链路追踪初始化成功")
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	var pdfExtractor processor.PDFExtractor
	if cfg.Parser.Engine == "eino" {
		einoExtractor, err := parser.NewEinoPDFExtractor(ctx)
		if err != nil {
			glog.Fatalf("创建Eino PDF提取器失败: %v", err)
		}
		pdfExtractor = einoExtractor
		glog.Info("使用Eino PDF解析器")
	} else {
		pdfExtractor = parser.NewNativePDFExtractor()
		glog.Info("使用原生PDF解析器")
	}

	var extractorOptions []parser.EntityExtractorOption
	if cfg.NLP.EnableNounPhrases {
		extractorOptions = append(extractorOptions, parser.WithNounPhraseTagger(parser.NewProseNounPhraseTagger()))
		glog.Info("名词短语启发式技能提取已启用")
	}

	procComponents := &processor.Components{
		PDFExtractor:     pdfExtractor,
		QualityValidator: parser.NewExtractionValidator(),
		EntityExtractor:  parser.NewEntityExtractor(extractorOptions...),
		MatchEvaluator:   parser.NewResumeMatcher(),
		Storage:          storageManager,
	}
	procSettings := &processor.Settings{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Debug:         cfg.Logger.Level == "debug",
	}

	resumeProcessor := processor.NewResumeProcessor(procComponents, procSettings)
	glog.Info("ResumeProcessor初始化成功")

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, resumeProcessor)
	glog.Info("ResumeHandler初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		// 把zerolog实例注入请求上下文，流水线内部通过 logger.Ctx 取用
		c = appCoreLogger.WithContext(c)
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, resumeHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
