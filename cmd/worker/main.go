package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	attribution "whatsapp-hub/internal/attribution/processor"
	kafkaClient "whatsapp-hub/internal/clients/kafka"
	"whatsapp-hub/internal/config"
	"whatsapp-hub/internal/events"
	inboundConsumer "whatsapp-hub/internal/inbound/consumer"
	inboundProcessor "whatsapp-hub/internal/inbound/processor"
	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"
	"whatsapp-hub/internal/workers"
)

func main() {
	logger := observability.NewLogger()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}

	logger.Info(ctx, "Starting inbound message worker...")

	dataStore, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		log.Fatalf("failed to initialize store: %s", err)
	}

	brokers := strings.Split(cfg.Kafka.Brokers, ",")

	producer := kafkaClient.NewProducer(kafkaClient.ProducerConfig{
		Brokers: brokers,
	}, logger)
	defer producer.Close()

	publisher := events.NewPublisher(producer, cfg.Kafka.MessagesTopic, cfg.Kafka.EventsTopic, logger)
	engine := attribution.NewEngine(&dataStore, cfg.Attribution.MatchWindowHours, logger)
	inbound := inboundProcessor.New(&dataStore, engine, publisher, logger)
	messageProcessor := inboundConsumer.NewMessageProcessor(inbound, logger)

	consumerConfig := workers.DefaultConsumerConfig(brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.MessagesTopic)
	consumerConfig.NumWorkers = cfg.WorkerPool.MessageWorkers
	consumer := workers.NewConsumer(consumerConfig, messageProcessor, logger)

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			logger.Error(ctx, "consumer stopped with error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down worker...")
	consumer.Stop()
	logger.Info(ctx, "Worker exited gracefully")
}
