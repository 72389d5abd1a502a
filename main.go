package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"serenity/config"
	"serenity/cron"
	"serenity/database"
	appointmentRepo "serenity/database/repository/appointment"
	blogRepo "serenity/database/repository/blog"
	bookingRepo "serenity/database/repository/booking"
	ragRepo "serenity/database/repository/rag"
	recordsRepo "serenity/database/repository/records"
	"serenity/handlers"
	"serenity/middleware"
	"serenity/routes"
	blogService "serenity/services/blog"
	"serenity/services/notification"
	"serenity/services/scheduling"
	"serenity/utils"
)

func main() {
	config.LoadConfig()

	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Single connection manager for the process; everything that talks
	// to the store goes through it.
	manager := database.NewManager(
		config.AppConfig.DatabaseURL,
		config.AppConfig.DatabaseName,
		time.Duration(config.AppConfig.DBConnectTimeoutSec)*time.Second,
		logger,
	)
	executor := database.NewExecutor(
		manager,
		config.AppConfig.DBMaxRetries,
		time.Duration(config.AppConfig.DBRetryInitialMs)*time.Millisecond,
		logger,
	)
	coordinator := database.NewCoordinator(manager, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := manager.Database(ctx)
	cancel()
	if err != nil {
		logger.Fatal("could not reach MongoDB", zap.Error(err))
	}

	utils.InitCache()

	appointments := appointmentRepo.NewMongoAppointmentRepo(db, executor, logger)
	bookings := bookingRepo.NewMongoBookingRepo(db, executor, logger)
	blogs := blogRepo.NewMongoBlogRepo(db, executor, logger)
	rag := ragRepo.NewMongoRagRepo(db, executor, logger)
	records := recordsRepo.NewMongoRecordsRepo(db, executor, logger)

	dispatcher := notification.NewAsynqDispatcher(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}, logger)
	defer dispatcher.Close()

	scheduler := &scheduling.DefaultSchedulingService{
		Appointments: appointments,
		Bookings:     bookings,
		Tx:           coordinator,
		Dispatcher:   dispatcher,
		Logger:       logger,
	}
	blogSvc := &blogService.DefaultBlogService{
		Repo:   blogs,
		Cache:  utils.GetCacheClient(),
		Logger: logger,
	}

	cron.InitNotificationWorker(&notification.LogSender{Logger: logger})

	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, manager)

	hb := &handlers.HandlerBundle{
		Appointments: handlers.NewAppointmentHandler(appointments, records, logger),
		Bookings:     handlers.NewBookingHandler(bookings, appointments, scheduler),
		Blogs:        handlers.NewBlogHandler(blogSvc),
		Admin:        handlers.NewAdminHandler(rag, records),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware())
	routes.RegisterRoutes(router, hb)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("mongo shutdown failed", zap.Error(err))
	}
}
