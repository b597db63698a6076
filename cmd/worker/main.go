// Worker consumes operation events from Kafka and persists them to the audit
// log, so a gateway running with event publication keeps a durable trail even
// when the serving process writes audit best-effort only.
// Set KAFKA_BROKERS, KAFKA_EVENTS_TOPIC, KAFKA_GROUP_ID, and DATABASE_URL.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	auditdomain "payment-rail-gateway/internal/audit/domain"
	auditrepo "payment-rail-gateway/internal/audit/repository"
	"payment-rail-gateway/internal/config"
	"payment-rail-gateway/internal/db"
	"payment-rail-gateway/internal/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	database, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: db: %v", err)
	}
	defer database.Close()
	repo := auditrepo.NewPostgresRepository(database)

	topic := cfg.KafkaEventsTopic
	if topic == "" {
		topic = "railgate-operations"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "railgate-events-worker"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", topic, groupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var event events.OperationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("worker: bad event payload: %v", err)
			continue
		}

		writeCtx, writeCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := repo.Create(writeCtx, toAuditLog(&event)); err != nil {
			log.Printf("worker: audit write failed: %v", err)
		}
		writeCancel()
	}
}

func toAuditLog(e *events.OperationEvent) *auditdomain.AuditLog {
	meta, _ := json.Marshal(map[string]any{
		"provider_reference": e.ProviderReference,
		"sca_required":       e.SCARequired,
		"sca_completed":      e.SCACompleted,
	})
	created := e.OccurredAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &auditdomain.AuditLog{
		ID:           uuid.New().String(),
		RequestID:    e.RequestID,
		Operation:    e.Operation,
		ProviderType: e.ProviderType,
		PaymentType:  e.PaymentType,
		Status:       e.Status,
		ErrorKind:    e.ErrorKind,
		Metadata:     string(meta),
		CreatedAt:    created,
	}
}
