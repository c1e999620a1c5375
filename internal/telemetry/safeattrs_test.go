package telemetry

import (
	"testing"
)

func TestSafeAttributesFiltersSecrets(t *testing.T) {
	kvs := map[string]interface{}{
		"prompt":         "should drop",
		"message_text":   "drop",
		"participant_id": "p01",
		"api_key":        "sk-123",
		"token":          "abc",
		"condition":      "generated_adaptive",
		"long_string":    string(make([]byte, 600)),
		"short_string":   "fine",
		"authorization":  "secret",
	}

	attrs := SafeAttributes(kvs)
	for _, a := range attrs {
		switch string(a.Key) {
		case "prompt", "message_text", "participant_id", "api_key", "authorization", "token":
			t.Fatalf("unexpected unsafe attribute %s", a.Key)
		}
		if a.Key == "long_string" {
			t.Fatalf("expected long string to be skipped")
		}
	}

	seen := map[string]bool{}
	for _, a := range attrs {
		seen[string(a.Key)] = true
	}
	if !seen["condition"] || !seen["short_string"] {
		t.Fatalf("safe attributes were dropped: %v", seen)
	}
}
