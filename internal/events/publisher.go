// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/venture-data/Call-Analysis-Demo/internal/observability/metrics"
)

// Publisher publishes analysis events to separate Kafka topics: one for
// completed analyses, one for the booked-call trigger.
type Publisher struct {
	writerAnalyses *kafka.Writer
	writerTriggers *kafka.Writer
	principal      string
	topicAnalyses  string
	topicTriggers  string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicAnalyses string
	TopicTriggers string
	Principal     string
	Enabled       bool
}

// New creates a new Kafka event publisher. When disabled (or with no
// brokers configured) it runs in log-only mode.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicAnalyses: cfg.TopicAnalyses,
			topicTriggers: cfg.TopicTriggers,
			enabled:       false,
			metrics:       m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerAnalyses := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicAnalyses,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerTriggers := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicTriggers,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicAnalyses", cfg.TopicAnalyses).
		Str("topicTriggers", cfg.TopicTriggers).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerAnalyses: writerAnalyses,
		writerTriggers: writerTriggers,
		principal:      cfg.Principal,
		topicAnalyses:  cfg.TopicAnalyses,
		topicTriggers:  cfg.TopicTriggers,
		enabled:        true,
		metrics:        m,
	}
}

// PublishAnalysis publishes a completed-analysis event.
func (p *Publisher) PublishAnalysis(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerAnalyses, p.topicAnalyses, "analysis", key, event)
}

// PublishTrigger publishes a booked-call trigger event.
func (p *Publisher) PublishTrigger(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerTriggers, p.topicTriggers, "trigger", key, event)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log.
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerAnalyses != nil {
		if e := p.writerAnalyses.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing analyses writer")
			err = e
		}
	}
	if p.writerTriggers != nil {
		if e := p.writerTriggers.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing triggers writer")
			err = e
		}
	}
	return err
}
