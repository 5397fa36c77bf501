// Worker consumes telemetry events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"gemini-observatory/backend/internal/config"
	"gemini-observatory/backend/internal/logging"
	"gemini-observatory/backend/internal/telemetry/loki"
	"gemini-observatory/backend/internal/telemetry/producer"
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL is required")
	}
	lokiClient, err := loki.NewClient(cfg.LokiURL, "gemini")
	if err != nil {
		log.WithError(err).Fatal("worker: loki client")
	}
	consumer, err := producer.NewConsumer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)
	if err != nil {
		log.WithError(err).Fatal("worker: kafka consumer")
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"topic": cfg.TelemetryKafkaTopic,
		"group": cfg.KafkaGroupID,
		"loki":  cfg.LokiURL,
	}).Info("worker: consuming")

	err = consumer.Run(ctx, func(ctx context.Context, value []byte) error {
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		defer cancel()
		return lokiClient.PushEventJSON(pushCtx, value)
	}, func(err error) {
		log.WithError(err).Warn("worker: event dropped")
	})
	if err != nil {
		log.WithError(err).Error("worker: stopped with error")
		return
	}
	log.Info("worker: stopped")
}
