package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scoregate/pkg/requestcontext"
)

// Publisher fans an entry out to an external sink (e.g. a Kafka topic).
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
}

// Logger records audit entries. Recording is fire-and-forget: the store write
// and publisher fan-out run on a detached goroutine whose failure is logged
// and discarded, never joined by the response path.
type Logger struct {
	store     Store
	publisher Publisher
	log       *slog.Logger
}

// Option configures the Logger.
type Option func(*Logger)

// WithPublisher attaches an external event publisher.
func WithPublisher(p Publisher) Option {
	return func(l *Logger) {
		l.publisher = p
	}
}

// NewLogger creates an audit logger writing to store.
func NewLogger(store Store, log *slog.Logger, opts ...Option) *Logger {
	l := &Logger{
		store: store,
		log:   log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record fills in identity fields from the context and dispatches the entry.
// It returns before the write completes.
func (l *Logger) Record(ctx context.Context, entry Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if entry.SourceAddr == "" {
		entry.SourceAddr = requestcontext.ClientIP(ctx)
	}
	if entry.ClientPlatform == "" {
		entry.ClientPlatform = requestcontext.ClientPlatform(ctx)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}

	l.log.InfoContext(ctx, "audit",
		"outcome", entry.Outcome,
		"account_id", entry.AccountID,
		"difficulty", entry.Difficulty,
		"success", entry.Success,
		"rate_limited", entry.RateLimited,
		"request_id", entry.RequestID,
		"log_type", "audit",
	)

	// Detach from the request: a cancelled caller must not lose the entry,
	// and a slow store must not delay the response.
	detached := context.WithoutCancel(ctx)
	go l.write(detached, entry)
}

func (l *Logger) write(ctx context.Context, entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("audit write panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if l.store != nil {
		if err := l.store.Insert(ctx, entry); err != nil {
			l.log.WarnContext(ctx, "audit store write failed",
				"error", err,
				"outcome", entry.Outcome,
			)
		}
	}
	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, entry); err != nil {
			l.log.WarnContext(ctx, "audit publish failed",
				"error", err,
				"outcome", entry.Outcome,
			)
		}
	}
}
