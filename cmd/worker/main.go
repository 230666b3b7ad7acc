package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jugnunagar/folio/internal/config"
	"github.com/jugnunagar/folio/internal/events"
	"github.com/jugnunagar/folio/internal/logger"
	"github.com/jugnunagar/folio/internal/mailer"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// notifier is the part of mailer.Relay the worker needs.
type notifier interface {
	NotifyPublished(ctx context.Context, title, summary, link string) error
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg, "worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	conn, ch, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()
	defer ch.Close()

	q, err := events.BindQueue(ch)
	if err != nil {
		log.Fatal("failed to bind queue", zap.Error(err))
	}

	deliveries, err := ch.Consume(q.Name, "owner-notifier", false, false, false, false, nil)
	if err != nil {
		log.Fatal("failed to start consuming", zap.Error(err))
	}

	var notify notifier
	if cfg.MailerConfigured() {
		notify = mailer.NewRelay(mailer.NewSMTPMailer(cfg), cfg.ToEmail, cfg.OwnerName)
	} else {
		log.Warn("SMTP not configured: events are logged only")
	}

	log.Info("worker started", zap.String("queue", q.Name))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			log.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Warn("delivery channel closed")
				return
			}
			handlePostPublished(log, notify, cfg.SiteURL, d)
		}
	}
}

func handlePostPublished(log *zap.Logger, notify notifier, siteURL string, d amqp.Delivery) {
	var e events.PostPublished
	if err := json.Unmarshal(d.Body, &e); err != nil {
		log.Error("invalid event body", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypePostPublished {
		log.Debug("ignoring event type", zap.String("type", e.Type))
		_ = d.Ack(false)
		return
	}
	log.Info("post published event received",
		zap.String("post_id", e.Payload.PostID),
		zap.String("slug", e.Payload.Slug),
		zap.String("title", e.Payload.Title),
	)

	if notify != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := notify.NotifyPublished(ctx, e.Payload.Title, e.Payload.Excerpt, postLink(siteURL, e.Payload))
		cancel()
		if err != nil {
			// Requeue once; a redelivered message that fails again is dropped.
			log.Error("owner notification failed", zap.String("post_id", e.Payload.PostID), zap.Error(err))
			_ = d.Nack(false, !d.Redelivered)
			return
		}
	}

	if err := d.Ack(false); err != nil {
		log.Error("failed to ack", zap.Error(err))
	}
}

func postLink(siteURL string, p events.PostPublishedPayload) string {
	key := p.Slug
	if key == "" {
		key = p.PostID
	}
	return strings.TrimRight(siteURL, "/") + "/blog/" + key
}
