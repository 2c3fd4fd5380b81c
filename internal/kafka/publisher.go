package kafka

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// Publisher emits progression audit events to Kafka. Publishing is fire
// and forget: delivery failures are logged, never surfaced to the request
// that produced the event.
type Publisher struct {
	config   *config.KafkaConfig
	producer sarama.AsyncProducer
	logger   *slog.Logger
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a new Kafka progression event publisher
func NewPublisher(cfg *config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Retry.Max = cfg.RetryAttempts
	saramaConfig.Producer.Retry.Backoff = cfg.RetryDelay
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, err
	}

	return newWithProducer(cfg, producer, logger), nil
}

func newWithProducer(cfg *config.KafkaConfig, producer sarama.AsyncProducer, logger *slog.Logger) *Publisher {
	p := &Publisher{
		config:   cfg,
		producer: producer,
		logger:   logger,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for err := range producer.Errors() {
			p.logger.Error("failed to publish progression event", "error", err.Err)
		}
	}()

	return p
}

// Publish enqueues one progression event, keyed by player id so a player's
// events stay ordered within a partition. Events published after Close are
// dropped with a log line; the producer's input channel is gone by then.
func (p *Publisher) Publish(event domain.ProgressionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal progression event", "type", event.Type, "error", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("dropping progression event, publisher closed", "type", event.Type, "player_id", event.PlayerID)
		return
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(event.PlayerID),
		Value: sarama.ByteEncoder(payload),
	}
}

// Close flushes pending events and shuts the producer down. Safe to call
// more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	// Holding the write lock here means no Publish is mid-send on the
	// input channel when the producer starts tearing it down.
	p.producer.AsyncClose()
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}
