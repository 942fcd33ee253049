package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-series-service/internal/config"
	"github.com/couchcryptid/covid-series-service/internal/domain"
	"github.com/couchcryptid/covid-series-service/internal/observability"
	"github.com/couchcryptid/covid-series-service/internal/snapshot"
	kafkago "github.com/segmentio/kafka-go"
)

// DailySummary is the message value published for every loaded day.
type DailySummary struct {
	Day            string `json:"day"`
	Confirmed      int64  `json:"confirmed"`
	Deaths         int64  `json:"deaths"`
	Recovered      int64  `json:"recovered"`
	ConfirmedDelta *int64 `json:"confirmed_delta"`
	DeathsDelta    *int64 `json:"deaths_delta"`
	RecoveredDelta *int64 `json:"recovered_delta"`
	SnapshotID     string `json:"snapshot_id"`
}

// Writer produces daily summary messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// PublishSummary writes one message per loaded day in a single
// WriteMessages call. Messages are keyed by day so a day's summaries from
// successive snapshots land on the same partition.
func (w *Writer) PublishSummary(ctx context.Context, snap *snapshot.Snapshot) error {
	msgs, err := summaryMessages(snap)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish daily summaries: %w", err)
	}
	w.metrics.SummariesPublished.Add(float64(len(msgs)))
	w.logger.Debug("daily summaries published", "snapshot_id", snap.ID, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func summaryMessages(snap *snapshot.Snapshot) ([]kafkago.Message, error) {
	days := snap.Aggregator.Days()
	msgs := make([]kafkago.Message, 0, len(days))
	for _, day := range days {
		kpis, err := snap.Aggregator.Summary(day)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", day, err)
		}
		msg, err := serializeToMessage(newDailySummary(day, kpis, snap), snap)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func newDailySummary(day string, kpis []domain.KPI, snap *snapshot.Snapshot) DailySummary {
	s := DailySummary{Day: day, SnapshotID: snap.ID.String()}
	for _, kpi := range kpis {
		switch kpi.Table {
		case domain.TableConfirmed:
			s.Confirmed, s.ConfirmedDelta = kpi.Total, kpi.Delta
		case domain.TableDeaths:
			s.Deaths, s.DeathsDelta = kpi.Total, kpi.Delta
		case domain.TableRecovered:
			s.Recovered, s.RecoveredDelta = kpi.Total, kpi.Delta
		}
	}
	return s
}

// serializeToMessage marshals a DailySummary into a Kafka message.
func serializeToMessage(summary DailySummary, snap *snapshot.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(summary.Day),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "snapshot_id", Value: []byte(summary.SnapshotID)},
			{Key: "loaded_at", Value: []byte(snap.LoadedAt.Format(time.RFC3339))},
		},
	}, nil
}
