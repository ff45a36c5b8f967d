package kafka

import (
	"context"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// Event types carried in the envelope and the event_type header.
const (
	EventDecisionRequested = "general_application.decision_requested"
	EventHwfRequested      = "general_application.hwf_requested"
	EventBusinessProcess   = "general_application.business_process"

	SchemaVersion = "v1"

	HeaderEventType     = "event_type"
	HeaderSource        = "source_service"
	HeaderSchemaVersion = "schema_version"
	HeaderCaseReference = "case_reference"
	HeaderOriginalTopic = "original_topic"
	HeaderError         = "error_message"
	HeaderAttempts      = "attempts"
)

// EventEnvelope wraps every payload the engine reads or writes.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	CaseReference string            `json:"case_reference"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func NewEventEnvelope(eventType, source, caseReference string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		CaseReference: caseReference,
		Payload:       data,
	}, nil
}

// DecodePayload fails on an empty payload; every engine event carries one.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeSerialization, "envelope has no payload").WithDetail(e.EventID)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal payload").WithDetail(e.EventID)
	}
	return nil
}

// ToMessage keys the message by case reference so one case stays on one
// partition.
func (e *EventEnvelope) ToMessage(topic string) (kafka.Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(e.CaseReference),
		Value: val,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(e.EventType)},
			{Key: HeaderSource, Value: []byte(e.Source)},
			{Key: HeaderSchemaVersion, Value: []byte(e.SchemaVersion)},
			{Key: HeaderCaseReference, Value: []byte(e.CaseReference)},
		},
	}, nil
}

func MessageToEventEnvelope(msg kafka.Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeSerialization, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	if env.SchemaVersion != "" && env.SchemaVersion != SchemaVersion {
		return nil, errors.New(errors.ErrCodeSerialization, "unsupported schema version").WithDetail(env.SchemaVersion)
	}
	return &env, nil
}

// Header returns the value of the named header, or "".
func Header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// TopicSpec describes a topic to create.
type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopics lists the engine's topics with their retention.
func DefaultTopics(cfg config.KafkaConfig) []TopicSpec {
	const day = int64(24 * time.Hour / time.Millisecond)
	return []TopicSpec{
		{Name: cfg.DecisionTopic, NumPartitions: 6, ReplicationFactor: 3, RetentionMs: 7 * day},
		{Name: cfg.HwfTopic, NumPartitions: 6, ReplicationFactor: 3, RetentionMs: 7 * day},
		{Name: cfg.BusinessProcessTopic, NumPartitions: 6, ReplicationFactor: 3, RetentionMs: 7 * day},
		{Name: cfg.DeadLetterTopic, NumPartitions: 3, ReplicationFactor: 3, RetentionMs: 30 * day},
	}
}

// ConnInterface abstracts kafka.Conn for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.InvalidParam("brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to dial kafka")
	}
	return NewTopicManagerWithConn(conn, logger), nil
}

func NewTopicManagerWithConn(conn ConnInterface, logger logging.Logger) *TopicManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}
}

// CreateTopic is a no-op when the topic already exists.
func (m *TopicManager) CreateTopic(ctx context.Context, ts TopicSpec) error {
	if ts.Name == "" {
		return errors.InvalidParam("topic name required")
	}
	if ts.NumPartitions <= 0 || ts.ReplicationFactor <= 0 {
		return errors.InvalidParam("partitions and replication factor must be positive").WithDetail(ts.Name)
	}
	if exists, _ := m.TopicExists(ctx, ts.Name); exists {
		return nil
	}

	tc := kafka.TopicConfig{
		Topic:             ts.Name,
		NumPartitions:     ts.NumPartitions,
		ReplicationFactor: ts.ReplicationFactor,
	}
	if ts.RetentionMs > 0 {
		tc.ConfigEntries = append(tc.ConfigEntries, kafka.ConfigEntry{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(ts.RetentionMs, 10)})
	}
	if err := m.conn.CreateTopics(tc); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "create topic").WithDetail(ts.Name)
	}
	m.logger.Info("Topic created", logging.String("topic", ts.Name))
	return nil
}

func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	if err != nil {
		return false, nil
	}
	return len(partitions) > 0, nil
}

func (m *TopicManager) EnsureTopics(ctx context.Context, specs []TopicSpec) error {
	for _, s := range specs {
		if err := m.CreateTopic(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

//Personal.AI order the ending
