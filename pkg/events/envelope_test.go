package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(key string) Envelope {
	return Envelope{
		ID:             key,
		Type:           "assessment.completed",
		Source:         "appraisal-activity",
		Version:        "1.0.0",
		IdempotencyKey: key,
		WorkflowID:     "wf",
		RunID:          "run",
		Payload:        json.RawMessage(`{"verdict":"low"}`),
	}
}

func TestMemoryEventSink_Deduplicates(t *testing.T) {
	sink := NewMemoryEventSink()
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, envelope("a")))
	require.NoError(t, sink.Append(ctx, envelope("b")))
	require.NoError(t, sink.Append(ctx, envelope("a")))

	got := sink.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].IdempotencyKey)
	assert.Equal(t, "b", got[1].IdempotencyKey)
}

func TestMemoryEventSink_Concurrent(t *testing.T) {
	sink := NewMemoryEventSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Append(context.Background(), envelope("same"))
		}()
	}
	wg.Wait()

	assert.Len(t, sink.Events(), 1)
}

func TestLogEventSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogEventSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, sink.Append(context.Background(), envelope("k1")))
	require.NoError(t, sink.Append(context.Background(), envelope("k1")))

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 1, lines)
	assert.Contains(t, buf.String(), `"event_type":"assessment.completed"`)
}

func TestNoOpEventSink(t *testing.T) {
	assert.NoError(t, NewNoOpEventSink().Append(context.Background(), envelope("x")))
}

func TestLogEventSink_BoundedDedupe(t *testing.T) {
	var buf bytes.Buffer
	sink := NewBoundedLogEventSink(slog.New(slog.NewJSONHandler(&buf, nil)), 2)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "a", "c", "b", "a"} {
		require.NoError(t, sink.Append(ctx, envelope(key)))
	}

	// "a" is refreshed by its repeat, so "c" evicts "b"; then "b" evicts "a".
	assert.Equal(t, 5, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Equal(t, 2, sink.seen.len())
}

func TestKeySet(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		keys     []string
		wantDups []bool
		wantLen  int
	}{
		{
			name:     "within capacity",
			capacity: 3,
			keys:     []string{"a", "b", "a"},
			wantDups: []bool{false, false, true},
			wantLen:  2,
		},
		{
			name:     "oldest evicted",
			capacity: 2,
			keys:     []string{"a", "b", "c", "a"},
			wantDups: []bool{false, false, false, false},
			wantLen:  2,
		},
		{
			name:     "non-positive capacity uses default",
			capacity: 0,
			keys:     []string{"a", "a"},
			wantDups: []bool{false, true},
			wantLen:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newKeySet(tt.capacity)
			for i, key := range tt.keys {
				assert.Equal(t, tt.wantDups[i], s.add(key), "key %d (%s)", i, key)
			}
			assert.Equal(t, tt.wantLen, s.len())
		})
	}
}
