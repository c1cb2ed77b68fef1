package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
)

// excerptLength bounds the output prefix copied into errors.
const excerptLength = 120

var (
	unquotedKeyRegex   = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractJSONObject parses model output into a JSON object. Text is parsed
// as-is first; on failure the first balanced {...} span is located and a
// single repair pass is applied unless repair is disabled. The boolean
// reports whether any repair or extraction was needed.
func ExtractJSONObject(text string, allowRepair bool) (map[string]any, bool, error) {
	trimmed := strings.TrimSpace(text)
	if obj, err := decodeObject(trimmed); err == nil {
		return obj, false, nil
	}

	if !allowRepair {
		return nil, false, malformed("output is not a JSON object and repair is disabled", text, nil)
	}

	candidate := stripCodeFences(trimmed)
	if span, ok := balancedObject(candidate); ok {
		candidate = span
	} else {
		return nil, false, malformed("no JSON object found", text, llmerrors.ErrNoJSONObject)
	}

	if obj, err := decodeObject(candidate); err == nil {
		return obj, true, nil
	}

	repaired := repairCommonJSONIssues(candidate)
	obj, err := decodeObject(repaired)
	if err != nil {
		return nil, false, malformed("JSON still invalid after repair", text, err)
	}
	return obj, true, nil
}

func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, llmerrors.ErrNoJSONObject
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	return normalizeNumbers(obj).(map[string]any), nil
}

// normalizeNumbers turns json.Number into int64 when integral, else float64.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeNumbers(val)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if j := strings.LastIndex(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return s
}

// balancedObject returns the first top-level {...} span, honoring strings.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairCommonJSONIssues applies one-shot repair for typical LLM output
// problems: trailing commas, unquoted keys and single-quoted strings.
func repairCommonJSONIssues(s string) string {
	repaired := trailingCommaRegex.ReplaceAllString(s, "$1")
	repaired = unquotedKeyRegex.ReplaceAllString(repaired, `$1"$2":`)

	// Only safe when the text carries no double quotes at all.
	if !strings.Contains(s, `"`) && strings.Contains(repaired, `'`) {
		repaired = strings.ReplaceAll(repaired, `'`, `"`)
	}
	return strings.TrimSpace(repaired)
}

func malformed(reason, text string, cause error) error {
	excerpt := strings.TrimSpace(text)
	if r := []rune(excerpt); len(r) > excerptLength {
		excerpt = string(r[:excerptLength])
	}
	return &llmerrors.MalformedOutputError{Reason: reason, Excerpt: excerpt, Cause: cause}
}
