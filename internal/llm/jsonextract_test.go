package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		allowRepair  bool
		want         map[string]any
		wantRepaired bool
		wantErr      bool
	}{
		{
			name:        "clean object",
			input:       `{"overall_risk": "low", "count": 3, "score": 0.5}`,
			allowRepair: true,
			want:        map[string]any{"overall_risk": "low", "count": int64(3), "score": 0.5},
		},
		{
			name:         "markdown fence",
			input:        "```json\n{\"a\": 1}\n```",
			allowRepair:  true,
			want:         map[string]any{"a": int64(1)},
			wantRepaired: true,
		},
		{
			name:         "prose around object",
			input:        "Here is the assessment:\n{\"a\": \"x } y\"}\nHope this helps.",
			allowRepair:  true,
			want:         map[string]any{"a": "x } y"},
			wantRepaired: true,
		},
		{
			name:         "trailing commas",
			input:        "{\"a\": [1, 2,], \"b\": 2,\n}",
			allowRepair:  true,
			want:         map[string]any{"a": []any{int64(1), int64(2)}, "b": int64(2)},
			wantRepaired: true,
		},
		{
			name:         "unquoted keys",
			input:        `{summary: "ok", overall_confidence: 0.7}`,
			allowRepair:  true,
			want:         map[string]any{"summary": "ok", "overall_confidence": 0.7},
			wantRepaired: true,
		},
		{
			name:         "single quotes",
			input:        `{'judgment': 'high'}`,
			allowRepair:  true,
			want:         map[string]any{"judgment": "high"},
			wantRepaired: true,
		},
		{name: "array is not an object", input: `[1, 2]`, allowRepair: true, wantErr: true},
		{name: "no braces", input: "I cannot assess this paper.", allowRepair: true, wantErr: true},
		{name: "unterminated", input: `{"a": 1`, allowRepair: true, wantErr: true},
		{name: "repair disabled", input: "```json\n{\"a\": 1}\n```", allowRepair: false, wantErr: true},
		{name: "null", input: `null`, allowRepair: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repaired, err := ExtractJSONObject(tt.input, tt.allowRepair)
			if tt.wantErr {
				require.Error(t, err)
				var malformedErr *llmerrors.MalformedOutputError
				assert.ErrorAs(t, err, &malformedErr)
				assert.Equal(t, llmerrors.ErrorTypeMalformedOutput, llmerrors.Classify(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRepaired, repaired)
		})
	}
}

func TestBalancedObject_EscapedQuotes(t *testing.T) {
	span, ok := balancedObject(`noise {"a": "say \"}\" now", "b": {"c": 1}} tail`)

	require.True(t, ok)
	assert.Equal(t, `{"a": "say \"}\" now", "b": {"c": 1}}`, span)
}

func TestCompletion_AsMap(t *testing.T) {
	c := &Completion{JSONData: map[string]any{"a": int64(1)}}

	assert.Equal(t, map[string]any{"json_data": map[string]any{"a": int64(1)}}, c.AsMap())
}
