package models

import (
	"encoding/json"
	"strings"
)

// Structured settings payloads (e.g. a tool's settings.json) travel inside
// Rule.Content as a fenced JSON block. Parsing and re-serializing the block
// normalizes key order but never changes values, so the payload round-trips
// through the store without semantic change.

const settingsFence = "```json"

// FenceJSON renders a decoded settings payload as a fenced JSON block
// suitable for Rule.Content. Keys are emitted in sorted order so the output
// is stable across writes.
func FenceJSON(payload map[string]any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return settingsFence + "\n" + string(data) + "\n```", nil
}

// UnfenceJSON extracts and decodes a fenced JSON block produced by
// FenceJSON. It returns ok=false when content is not a single fenced JSON
// block.
func UnfenceJSON(content string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, settingsFence+"\n") || !strings.HasSuffix(trimmed, "```") {
		return nil, false
	}
	inner := strings.TrimPrefix(trimmed, settingsFence+"\n")
	inner = strings.TrimSuffix(inner, "```")
	var payload map[string]any
	if err := json.Unmarshal([]byte(inner), &payload); err != nil {
		return nil, false
	}
	return payload, true
}
