package journal

import (
	"encoding/json"
	"strings"
)

// SerializeTags flattens an editor tag set into the persisted TEXT
// representation: a JSON list of trimmed, non-empty, duplicate-free strings
// in insertion order. An empty set persists as NULL, never as an empty string.
func SerializeTags(tags []string) *string {
	cleaned := dedupeTrimmed(tags)
	if len(cleaned) == 0 {
		return nil
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

// ParseTags restores a tag set from its persisted representation. Legacy rows
// hold comma-joined text instead of a JSON list; both forms round-trip.
func ParseTags(raw *string) []string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		return dedupeTrimmed(parsed)
	}
	return dedupeTrimmed(strings.Split(s, ","))
}

// SerializeEmotionalProblems persists the reflection set, keeping only values
// from the fixed vocabulary.
func SerializeEmotionalProblems(values []string) *string {
	var selection []string
	for _, v := range dedupeTrimmed(values) {
		for _, known := range EmotionalProblems {
			if v == known {
				selection = append(selection, v)
				break
			}
		}
	}
	if len(selection) == 0 {
		return nil
	}
	raw, err := json.Marshal(selection)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}

// ParseEmotionalProblems restores the reflection set, dropping anything
// outside the vocabulary.
func ParseEmotionalProblems(raw *string) []string {
	var selection []string
	for _, v := range ParseTags(raw) {
		for _, known := range EmotionalProblems {
			if v == known {
				selection = append(selection, v)
				break
			}
		}
	}
	return selection
}

func dedupeTrimmed(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
