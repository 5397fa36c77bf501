// server runs the observatory JSON API, the gRPC health endpoint, and the execution engine.
package main

import (
	"context"
	"crypto"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/config"
	"gemini-observatory/backend/internal/db"
	"gemini-observatory/backend/internal/execution"
	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/metrics"
	"gemini-observatory/backend/internal/observation/storage"
	"gemini-observatory/backend/internal/progress"
	"gemini-observatory/backend/internal/security"
	"gemini-observatory/backend/internal/server"
	"gemini-observatory/backend/internal/telemetry"
	telemetryotel "gemini-observatory/backend/internal/telemetry/otel"
	"gemini-observatory/backend/internal/telemetry/producer"
)

const (
	healthInterval  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server: exited")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, cfg.OTelInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("otel: shutdown")
		}
	}()

	tokens, err := tokenProvider(cfg, log)
	if err != nil {
		return err
	}

	var backends server.Backends
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		backends.DB = conn
	} else {
		log.Warn("DATABASE_URL not set: using in-memory repositories, data is lost on restart")
	}

	if cfg.RedisAddr != "" {
		client, err := db.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		backends.Redis = client
	}

	if cfg.MinIOEndpoint != "" {
		store, err := storage.NewMinIOStorage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		backends.Objects = store
	}

	if cfg.NATSURL != "" {
		nc, err := progress.ConnectNATS(cfg.NATSURL, cfg.OTelServiceName)
		if err != nil {
			return err
		}
		defer nc.Drain()
		backends.Sinks = append(backends.Sinks, progress.NewNATSSink(nc, cfg.ProgressSubjectPrefix))
	}
	if sink := telemetryotel.NewProgressSink(providers.LoggerProvider); sink != nil {
		backends.Sinks = append(backends.Sinks, sink)
	}

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kp := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic); kp != nil {
		defer kp.Close()
		emitters = append(emitters, kp)
	}
	backends.Telemetry = telemetry.Fanout(emitters...)

	app, err := server.NewApp(ctx, backends, server.Options{
		Tokens:      tokens,
		BcryptCost:  cfg.BcryptCost,
		Execution:   execution.Config{Workers: cfg.ExecutionWorkers, FrameInterval: cfg.FrameInterval()},
		CORSOrigins: cfg.CORSOriginsList(),
		Metrics:     metrics.New(),
		Log:         log,
	})
	if err != nil {
		return err
	}

	if n, err := app.Stars.Seed(ctx); err != nil {
		return err
	} else if n > 0 {
		log.WithField("count", n).Info("star catalogue seeded")
	}
	if cfg.BootstrapAdminUsername != "" && cfg.BootstrapAdminPassword != "" {
		created, err := app.Auth.EnsureAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.WithField("username", cfg.BootstrapAdminUsername).Info("bootstrap administrator created")
		}
	}

	engineDone := make(chan error, 1)
	go func() { engineDone <- app.Engine.Run(ctx) }()
	go app.Health.Watch(ctx, healthInterval)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	grpcServer := server.NewGRPCServer(app.Health.GRPCServer())
	go func() {
		log.WithField("addr", cfg.GRPCAddr).Info("gRPC health server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.WithError(err).Error("gRPC serve")
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-httpErr:
		log.WithError(err).Error("HTTP serve")
		stop()
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown")
	}
	grpcServer.GracefulStop()
	app.Engine.Stop()
	if err := <-engineDone; err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Warn("execution engine")
	}
	time.Sleep(telemetry.ShutdownDrainDuration)
	log.Info("stopped")
	return nil
}

func tokenProvider(cfg *config.Config, log logrus.FieldLogger) (*security.TokenProvider, error) {
	var (
		priv crypto.Signer
		pub  crypto.PublicKey
		err  error
	)
	if cfg.JWTPrivateKey != "" {
		priv, pub, err = security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	} else {
		log.Warn("JWT keys not set: generated an ephemeral signing key, tokens will not survive a restart")
		priv, pub, err = security.GenerateEphemeralKey()
	}
	if err != nil {
		return nil, err
	}
	return security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL()), nil
}
