package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"stayhub/internal/cache"
	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/middleware"
	"stayhub/internal/modules/auth"
	"stayhub/internal/modules/checkout"
	"stayhub/internal/modules/favorite"
	"stayhub/internal/modules/listing"
	"stayhub/internal/modules/notification"
	"stayhub/internal/modules/payment"
	"stayhub/internal/modules/reservation"
	"stayhub/internal/modules/review"
	jwtsvc "stayhub/internal/pkg/jwt"
	"stayhub/internal/pkg/logger"
	"stayhub/internal/worker"

	"stayhub/internal/repository"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Server.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Property{},
		&domain.Reservation{},
		&domain.Transaction{},
		&domain.Notification{},
		&domain.Review{},
		&domain.Favorite{},
	); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	if err := database.EnsureConstraints(db); err != nil {
		log.Fatal("constraint setup failed", zap.Error(err))
	}

	var propertyCache *cache.Client
	if cfg.Redis.Addr != "" {
		propertyCache, err = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PropertyTTL)
		if err != nil {
			log.Warn("redis unavailable, property cache disabled", zap.Error(err))
			propertyCache = nil
		} else {
			defer propertyCache.Close()
		}
	}

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	j := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	gateway := payment.NewGateway(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey, cfg.Gateway.Timeout, log)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	listingService := listing.NewService(propertyRepo, propertyCache, log)
	listingHandler := listing.NewHandler(listingService)

	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	checkoutService := checkout.NewService(
		propertyRepo,
		reservationRepo,
		transactionRepo,
		gateway,
		notificationService,
		checkout.FeeRates{
			Cleaning: cfg.Fees.CleaningRate,
			Service:  cfg.Fees.ServiceRate,
			Tax:      cfg.Fees.TaxRate,
		},
		cfg.Fees.Currency,
		log,
	)
	checkoutHandler := checkout.NewHandler(checkoutService)

	reservationService := reservation.NewService(reservationRepo, transactionRepo, gateway, notificationService, log)
	reservationHandler := reservation.NewHandler(reservationService)

	reviewService := review.NewService(reviewRepo, reservationRepo, propertyRepo, notificationService, log)
	reviewHandler := review.NewHandler(reviewService)

	favoriteHandler := favorite.NewHandler(favoriteRepo)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.CORS(), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		listingHandler.RegisterPublicRoutes(v1)
		reviewHandler.RegisterPublicRoutes(v1)
		reservationHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			checkoutHandler.RegisterRoutes(protected)
			reservationHandler.RegisterRoutes(protected)
			reviewHandler.RegisterProtectedRoutes(protected)
			favoriteHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)

			host := protected.Group("/")
			host.Use(middleware.HostOnly())
			{
				listingHandler.RegisterHostRoutes(host)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := worker.NewReconciler(
		transactionRepo,
		gateway,
		cfg.Worker.ReconcileInterval,
		cfg.Worker.StaleAfter,
		log,
	)
	go reconciler.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("server started", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
