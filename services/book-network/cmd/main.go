package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/davidnhn/book-social-network/services/book-network/internal/config"
	"github.com/davidnhn/book-social-network/services/book-network/internal/handler"
	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
	"github.com/davidnhn/book-social-network/shared/auth"
	"github.com/davidnhn/book-social-network/shared/discovery"
	"github.com/davidnhn/book-social-network/shared/interceptor"
	"github.com/davidnhn/book-social-network/shared/mailer"
	"github.com/davidnhn/book-social-network/shared/utilities"
	"github.com/davidnhn/book-social-network/shared/validate"
)

func main() {
	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.NewBookNetworkConfig(&bootstrap)

	logger := setupLogger(cfg)
	logger.Info().Str("env", cfg.Env).Msg("starting book network service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := connectMongo(ctx, cfg.Mongo, logger)
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()
	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, logger, db)
	roleRepo := repository.NewRoleMongoRepository(ctx, logger, db)
	tokenRepo := repository.NewActivationTokenMongoRepository(ctx, logger, db)
	bookRepo := repository.NewBookMongoRepository(ctx, logger, db)
	lendingRepo := repository.NewLendingRecordMongoRepository(ctx, logger, db)
	feedbackRepo := repository.NewFeedbackMongoRepository(ctx, logger, db)
	coverStore := repository.NewGridFSCoverStore(db, cfg.Covers.Bucket)
	transactor := repository.NewMongoTransactor(client)

	if _, err := roleRepo.EnsureRole(ctx, model.RoleUser); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed USER role")
	}

	signingKey, err := auth.NewSigningKey(cfg.Token.SecretKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load JWT signing key")
	}
	jwtAuth := auth.NewJWTAuthenticator(signingKey, cfg.Token.ExpiresIn)

	smtp, err := mailer.NewMailer(cfg.SMTP)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create mailer")
	}
	dispatcher := mailer.NewDispatcher(smtp, logger, cfg.Mailing.Workers, cfg.Mailing.QueueSize)
	dispatcher.Start()
	defer dispatcher.Close()

	activationUC := usecase.NewActivationUsecase(userRepo, tokenRepo, transactor, dispatcher, usecase.ActivationConfig{
		CodeLength:    cfg.Token.ActivationCodeLength,
		Lifetime:      cfg.Token.ActivationCodeLifetime,
		ActivationURL: cfg.Mailing.ActivationURL,
	}, logger)
	sessionUC := usecase.NewSessionUsecase(userRepo, jwtAuth)

	validator, err := validate.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	router := handler.NewRouter(handler.Usecases{
		Auth:       usecase.NewAuthUsecase(userRepo, roleRepo, transactor, activationUC, jwtAuth),
		Activation: activationUC,
		Session:    sessionUC,
		Book:       usecase.NewBookUsecase(bookRepo, userRepo, lendingRepo, feedbackRepo, coverStore, logger),
		Lending:    usecase.NewLendingUsecase(bookRepo, lendingRepo),
		Feedback:   usecase.NewFeedbackUsecase(bookRepo, feedbackRepo),
	}, validator, logger, cfg.Covers.MaxUploadBytes)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Health methods are exempt; services registered beside health get session verification.
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewJWTInterceptor(sessionUC, logger, utilities.HealthCheckMethods)),
	)
	healthServer := utilities.RegisterHealthServer(grpcServer)

	deregister := registerWithConsul(cfg.Consul, logger)
	defer deregister()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTP.Address).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		listener, err := net.Listen("tcp", cfg.GRPC.Address)
		if err != nil {
			return err
		}
		logger.Info().Str("addr", cfg.GRPC.Address).Msg("grpc server listening")
		return grpcServer.Serve(listener)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down")

		healthServer.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
}

func setupLogger(cfg *config.BookNetworkConfig) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	switch cfg.Env {
	case config.EnvLocal:
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(zerolog.DebugLevel)
	default:
		logger = zerolog.New(os.Stdout).Level(level)
	}

	logger = logger.With().Timestamp().Str("service", "book-network").Logger()

	return &logger
}

func connectMongo(ctx context.Context, cfg config.MongoConfig, logger *zerolog.Logger) *mongo.Client {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	return client
}

// registerWithConsul is a no-op when no agent address is configured.
func registerWithConsul(cfg config.ConsulConfig, logger *zerolog.Logger) func() {
	if cfg.Address == "" {
		return func() {}
	}

	registry, err := discovery.NewConsulRegistry(cfg.Address, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create consul registry")
	}

	serviceID, err := registry.Register(discovery.Registration{
		ServiceName:    cfg.ServiceName,
		ServiceAddress: cfg.AdvertiseAddress,
		HealthCheckURL: "http://" + cfg.AdvertiseAddress + handler.HealthPath,
		CheckInterval:  "10s",
		CheckTimeout:   "2s",
		Tags:           []string{"http"},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register with consul")
	}

	return func() {
		if err := registry.Deregister(serviceID); err != nil {
			logger.Error().Err(err).Msg("failed to deregister from consul")
		}
	}
}
