package assessment

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-appraise/internal/prompts"
)

// Options is the read-only configuration of an assessor, fixed at construction.
type Options struct {
	Logger   *slog.Logger
	Template *prompts.Template
	Clock    func() time.Time
	NewID    func() string
}

// Option configures an assessor.
type Option func(*Options)

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithPromptTemplate replaces the built-in prompt template.
func WithPromptTemplate(t *prompts.Template) Option {
	return func(o *Options) { o.Template = t }
}

// WithClock sets the source of AssessedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Clock = now }
}

// WithIDGenerator sets the source of assessment IDs.
func WithIDGenerator(newID func() string) Option {
	return func(o *Options) { o.NewID = newID }
}

func defaultOptions() Options {
	return Options{
		Logger: slog.Default(),
		Clock:  func() time.Time { return time.Now().UTC() },
		NewID:  func() string { return uuid.New().String() },
	}
}
