package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"

	"github.com/lumina/lts/internal/cache"
	"github.com/lumina/lts/internal/chain"
	"github.com/lumina/lts/internal/config"
	"github.com/lumina/lts/internal/database"
	"github.com/lumina/lts/internal/handler"
	"github.com/lumina/lts/internal/ipfs"
	"github.com/lumina/lts/internal/lifecycle"
	"github.com/lumina/lts/internal/logger"
	"github.com/lumina/lts/internal/logic"
	"github.com/lumina/lts/internal/reconcile"
	"github.com/lumina/lts/internal/router"
	"github.com/lumina/lts/internal/scheduler"
)

func main() {
	cfg := config.Load()

	level := logger.ParseLogLevel(cfg.Log.Level)
	var appLogger *logger.Logger
	var err error
	if cfg.Log.Output == "file" {
		appLogger, err = logger.NewWithFileRotation(level, cfg.Log.File)
	} else {
		appLogger, err = logger.New(level)
	}
	if err != nil {
		panic(err)
	}
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	chainClient := chain.NewClient(cfg.Chain)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if cfg.Chain.PrivateKey != "" {
		err = chainClient.InitWithSigner(ctx)
	} else {
		err = chainClient.InitReadOnly(ctx)
	}
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}
	defer chainClient.Close()

	readCache := cache.New(cfg.Redis)
	defer readCache.Close()

	ipfsClient := ipfs.NewClient(cfg.IPFS)

	reviews := logic.NewReviewLogic(db, chainClient)
	auctions := logic.NewAuctionLogic(db, ipfsClient, chainClient, cfg.Auction.MinDuration)
	bids := logic.NewBidLogic(db, chainClient)

	// In-process bus carrying decoded contract logs from the monitor to
	// the reconciler.
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer bus.Close()

	monitor := chain.NewMonitor(chainClient, bus, cfg.Chain.StartBlock,
		uint64(cfg.Chain.Confirmations), time.Duration(cfg.Task.Interval)*time.Second)
	monitor.Start()
	defer monitor.Stop()

	reconciler := reconcile.New(db, bus, readCache, reconcile.CacheKeys{
		Events: cache.EventsKey,
		Event:  cache.EventKey,
		Ticket: cache.TicketKey,
	}, 5*time.Minute)
	if err := reconciler.Start(); err != nil {
		logger.Fatal("Failed to start reconciler: %v", err)
	}
	defer reconciler.Stop()

	tasks, err := scheduler.NewManager(db, auctions, cfg)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	tasks.Start()
	defer tasks.Stop()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	tickets := lifecycle.NewManager(chainClient, readCache, lifecycle.CacheKeys{
		Events: cache.EventsKey,
		Event:  cache.EventKey,
		Ticket: cache.TicketKey,
	})

	r := router.Setup(
		handler.NewReviewHandler(reviews),
		handler.NewAuctionHandler(auctions, bids, chainClient),
		handler.NewEventHandler(chainClient, readCache),
		handler.NewTicketHandler(tickets),
	)

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")
}
