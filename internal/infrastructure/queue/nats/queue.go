package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

// OrganizeRequest asks a worker to organize one file on its local disk.
type OrganizeRequest struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`
}

// FileOrganizedEvent is published after a successful disposition.
type FileOrganizedEvent struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	Fallback    bool      `json:"fallback"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Queue struct {
	conn             *nats.Conn
	requestSubject   string
	organizedSubject string
	executor         *resilience.Executor
	logger           *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url, requestSubject, organizedSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("file-organizer"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:             conn,
		requestSubject:   requestSubject,
		organizedSubject: organizedSubject,
		executor:         options.ResilienceExecutor,
		logger:           logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishFileOrganized(ctx context.Context, outcome domain.FileOutcome) error {
	payload, err := json.Marshal(newFileOrganizedEvent(outcome, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("marshal organized event: %w", err)
	}
	return q.publish(ctx, q.organizedSubject, payload)
}

// RequestOrganize enqueues a file for a worker.
func (q *Queue) RequestOrganize(ctx context.Context, req OrganizeRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal organize request: %w", err)
	}
	return q.publish(ctx, q.requestSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return markTemporary("nats publish", err)
	}
	return nil
}

// SubscribeOrganizeRequests blocks until ctx is done. Messages are handled one
// at a time in arrival order.
func (q *Queue) SubscribeOrganizeRequests(ctx context.Context, handler func(context.Context, OrganizeRequest) error) error {
	sub, err := q.conn.QueueSubscribe(q.requestSubject, "organizers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		req, err := decodeOrganizeRequest(msg.Data)
		if err != nil {
			q.logger.Warn("organize_request_invalid", "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, req); err != nil {
			q.logger.Error("worker_handler_error", "file", req.Path, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

// decodeOrganizeRequest accepts a JSON request or a bare path.
func decodeOrganizeRequest(data []byte) (OrganizeRequest, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return OrganizeRequest{}, fmt.Errorf("empty organize request")
	}
	if !strings.HasPrefix(raw, "{") {
		return OrganizeRequest{Path: raw}, nil
	}
	var req OrganizeRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return OrganizeRequest{}, fmt.Errorf("decode organize request: %w", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return OrganizeRequest{}, fmt.Errorf("organize request without path")
	}
	return req, nil
}

func newFileOrganizedEvent(outcome domain.FileOutcome, at time.Time) FileOrganizedEvent {
	return FileOrganizedEvent{
		RunID:       outcome.RunID,
		Source:      outcome.Path,
		Category:    outcome.Category,
		Destination: outcome.Destination,
		Status:      string(outcome.Status),
		Fallback:    outcome.Fallback,
		OccurredAt:  at,
	}
}

var classifyNATSError = resilience.Rules{
	Transient: func(err error) bool {
		return errors.Is(err, nats.ErrNoServers) ||
			errors.Is(err, nats.ErrTimeout) ||
			errors.Is(err, nats.ErrConnectionClosed) ||
			errors.Is(err, nats.ErrDisconnected) ||
			errors.Is(err, nats.ErrReconnectBufExceeded)
	},
}.Classify

func markTemporary(operation string, err error) error {
	return resilience.MarkTemporary(operation, err, classifyNATSError)
}
