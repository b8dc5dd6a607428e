// Package broadcaster drains the event outbox to Kafka. It runs beside the
// engine, never inside it: a slow or dead broker delays publication, not
// matching.
package broadcaster

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"matchd/infra/journal"
)

const drainInterval = 250 * time.Millisecond

// Broadcaster republishes pending journal entries until the broker accepts
// them. An entry is marked SENT before the publish attempt and ACKED only
// after the broker confirms, so a crash between the two re-sends rather
// than drops. Consumers must dedupe on the sequence number.
type Broadcaster struct {
	journal  *journal.Journal
	producer sarama.SyncProducer
	topic    string
}

// New connects a synchronous producer to brokers.
func New(j *journal.Journal, brokers []string, topic string) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProducer(j, producer, topic), nil
}

// NewWithProducer wires an existing producer, which tests substitute with
// sarama's mock.
func NewWithProducer(j *journal.Journal, producer sarama.SyncProducer, topic string) *Broadcaster {
	return &Broadcaster{
		journal:  j,
		producer: producer,
		topic:    topic,
	}
}

// Start launches the drain loop. It stops when ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(drainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[broadcaster] stopped")
				return
			case <-ticker.C:
				b.DrainOnce()
			}
		}
	}()
}

// DrainOnce publishes every pending entry in sequence order, stopping at
// the first broker failure so ordering is preserved across retries.
func (b *Broadcaster) DrainOnce() {
	err := b.journal.ScanPending(func(e *journal.Entry) bool {
		if err := b.journal.MarkSent(e.Seq); err != nil {
			log.Printf("[broadcaster] mark sent %d: %v", e.Seq, err)
			return false
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(keyFor(e.Seq)),
			Value: sarama.ByteEncoder(e.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			log.Printf("[broadcaster] publish %d: %v", e.Seq, err)
			return false
		}

		if err := b.journal.MarkAcked(e.Seq); err != nil {
			log.Printf("[broadcaster] mark acked %d: %v", e.Seq, err)
			return false
		}
		return true
	})
	if err != nil {
		log.Printf("[broadcaster] scan: %v", err)
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}

func keyFor(seq uint64) string {
	// Fixed-width keys keep compacted topics ordered lexically.
	return fmt.Sprintf("%020d", seq)
}
