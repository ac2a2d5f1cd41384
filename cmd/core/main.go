package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-point-wallet/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/adapter/in/rest"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/domain"
	memory_adapter "github.com/JoeShih716/go-point-wallet/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-point-wallet/internal/app/core/usecase"
	"github.com/JoeShih716/go-point-wallet/internal/config"
	"github.com/JoeShih716/go-point-wallet/pkg/keyedlock"
	"github.com/JoeShih716/go-point-wallet/pkg/logger"
	"github.com/JoeShih716/go-point-wallet/pkg/wal"
	pb "github.com/JoeShih716/go-point-wallet/proto"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 初始化 Logger
	appLogger := logger.New(os.Stdout, cfg.Log.Level)
	helper := log.NewHelper(log.With(appLogger, "module", "main"))

	// 3. 初始化 UseCase
	opts := []usecase.Option{usecase.WithLocker(keyedlock.New[int64]())}
	if cfg.Journal.Enabled {
		journal, err := wal.NewWAL[domain.JournalEntry](cfg.Journal.Path, wal.WithMaxBytes(cfg.Journal.MaxBytes))
		if err != nil {
			helper.Fatalf("Failed to open journal %s: %v", cfg.Journal.Path, err)
		}
		// 程式結束時關閉 Journal
		defer journal.Close()
		opts = append(opts, usecase.WithJournal(journal))
		helper.Infof("Journal enabled at %s", cfg.Journal.Path)
	}
	coreUseCase := usecase.NewCoreUseCase(
		memory_adapter.NewBalanceStore(),
		memory_adapter.NewHistoryStore(),
		appLogger,
		opts...,
	)

	// 4. 初始化 Driving Adapters
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor(appLogger)))
	pb.RegisterPointServiceServer(grpcServer, grpc_adapter.NewGrpcServer(coreUseCase))

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: rest.NewRouter(rest.NewHandler(coreUseCase, appLogger)),
	}

	lis, err := net.Listen("tcp", cfg.Server.GrpcAddr)
	if err != nil {
		helper.Fatalf("failed to listen: %v", err)
	}

	// 5. 啟動 Server，收到 SIGINT/SIGTERM 時 Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		helper.Infof("Starting gRPC server on %s", cfg.Server.GrpcAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		helper.Infof("Starting HTTP server on %s", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		helper.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := grpc_adapter.Shutdown(shutdownCtx, grpcServer); err != nil {
			helper.Warnf("gRPC server forced to stop: %v", err)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		helper.Errorf("Server exited with error: %v", err)
		return
	}
	helper.Info("Server exited")
}
