package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms/api/handler"
	apiMiddleware "lms/api/middleware"
	"lms/api/routes"
	"lms/config"
	"lms/internal/dto"
	"lms/internal/metrics"
	"lms/internal/repository"
	"lms/internal/service"
	"lms/internal/session"
	"lms/internal/utils"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type stores struct {
	users        repository.UserRepository
	securityLogs repository.SecurityLogRepository
	transactor   repository.Transactor
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("storage unavailable")
	}

	clock := service.RealClock{}
	verifications := repository.NewMemoryIdentityVerificationRepository(clock.Now)
	redisClient, err := config.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Fatal("redis unavailable")
	}
	if redisClient != nil {
		defer redisClient.Close()
		verifications = repository.NewRedisIdentityVerificationRepository(redisClient, clock.Now)
		logger.Info("identity verifications stored in redis")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	sessions := session.NewRegistry(session.Config{
		Timeout:       cfg.SessionTimeout,
		SweepInterval: cfg.SessionSweepInterval,
		Logger:        logger,
	})
	sessions.Start(ctx)
	defer sessions.Stop()
	m.TrackActiveSessions(sessions.ActiveCount)

	accessManager := utils.JWTManager{
		Secret:         cfg.JWTSecret,
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}
	authConfig := service.AuthConfig{
		AccessTokenTTL:       cfg.AccessTokenTTL,
		VerificationTokenTTL: cfg.VerificationTokenTTL,
		EmailTokenTTL:        cfg.EmailTokenTTL,
	}
	passwordHasher := service.BcryptPasswordHasher{Cost: cfg.BcryptCost}

	identityService := service.NewIdentityService(verifications, service.MockNiceProvider{}, clock, authConfig.VerificationTokenTTL, logger, m)
	usernameService := service.NewUsernameService(st.users, clock, logger)
	registrationService := service.NewRegistrationService(
		st.users,
		st.transactor,
		identityService,
		usernameService,
		passwordHasher,
		service.LogNotifier{Logger: logger},
		clock,
		authConfig,
		logger,
		m,
	)
	authService := service.NewAuthService(
		st.users,
		st.securityLogs,
		sessions,
		passwordHasher,
		service.JWTAccessIssuer{Manager: &accessManager},
		clock,
		logger,
		m,
	)

	validate := dto.NewValidator()
	authHandler := handler.NewAuthHandler(authService, validate)
	registrationHandler := handler.NewRegistrationHandler(identityService, usernameService, registrationService, validate, logger)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.HTTPErrorHandler(logger)
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &accessManager, Sessions: sessions}
	router := routes.NewRouter(app, authHandler, registrationHandler, authMiddleware, authService)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    cfg.HTTPAddr,
			"storage": cfg.Storage,
		}).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
	logger.Info("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{users: mem.Users(), securityLogs: mem, transactor: mem}, nil
	}

	db, err := config.ConnectionDb(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &stores{
		users:        repository.NewUserRepository(db),
		securityLogs: repository.NewSecurityLogRepository(db),
		transactor:   repository.NewTransactor(db),
	}, nil
}
