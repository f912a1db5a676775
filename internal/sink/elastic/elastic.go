// Package elastic appends booking activity entries to a search index.
// Appends are best-effort: callers going through RecordActivity never see
// a failure, they only show up in the operator log.
package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/MarkoPoloResearchLab/roomdesk/pkg/booking"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// DefaultIndex is the log collection the original deployment indexes into.
	DefaultIndex = "room-logs"

	defaultTimeout       = 5 * time.Second
	defaultRetryCount    = 2
	defaultRetryWaitTime = 250 * time.Millisecond
)

// Config carries the search node connection settings.
type Config struct {
	Node     string
	Username string
	Password string
	Index    string
	Timeout  time.Duration
}

// Sink writes one JSON document per activity entry.
type Sink struct {
	client *resty.Client
	index  string
	logger *zap.Logger
}

// NewSink builds a Sink for the configured search node.
func NewSink(cfg Config, logger *zap.Logger) *Sink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	client := resty.New().
		SetBaseURL(cfg.Node).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetBasicAuth(cfg.Username, cfg.Password).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Sink{
		client: client,
		index:  index,
		logger: logger,
	}
}

// Ping checks the search node is reachable.
func (sink *Sink) Ping(ctx context.Context) error {
	resp, err := sink.client.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("ping search node: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ping search node: %s", resp.Status())
	}
	return nil
}

type document struct {
	Action         string `json:"action"`
	RoomID         string `json:"room_id"`
	Name           string `json:"name,omitempty"`
	PriceCents     int64  `json:"price_cents,omitempty"`
	Guest          string `json:"guest,omitempty"`
	AttemptedGuest string `json:"attempted_guest,omitempty"`
	CurrentGuest   string `json:"current_guest,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// Append indexes one entry and reports any transport or node failure.
func (sink *Sink) Append(ctx context.Context, entry booking.ActivityEntry) error {
	doc := document{
		Action:         string(entry.Action),
		RoomID:         entry.RoomID.String(),
		Name:           entry.RoomName.String(),
		PriceCents:     entry.Price.Int64(),
		Guest:          entry.Guest,
		AttemptedGuest: entry.AttemptedGuest,
		CurrentGuest:   entry.CurrentGuest,
		Timestamp:      time.Unix(entry.RecordedUnixUTC, 0).UTC().Format(time.RFC3339),
	}
	resp, err := sink.client.R().
		SetContext(ctx).
		SetBody(doc).
		Post(fmt.Sprintf("/%s/_doc", sink.index))
	if err != nil {
		return fmt.Errorf("append %s entry: %w", entry.Action, err)
	}
	if resp.IsError() {
		return fmt.Errorf("append %s entry: search node returned %s", entry.Action, resp.Status())
	}
	return nil
}

// RecordActivity implements booking.ActivityRecorder. A failed append is
// logged for operators and otherwise swallowed; nothing compensates the
// store mutation that triggered it.
func (sink *Sink) RecordActivity(ctx context.Context, entry booking.ActivityEntry) {
	if err := sink.Append(ctx, entry); err != nil {
		sink.logger.Error("activity append failed",
			zap.String("action", string(entry.Action)),
			zap.String("room_id", entry.RoomID.String()),
			zap.Error(err),
		)
	}
}
