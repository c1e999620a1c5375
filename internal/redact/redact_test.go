package redact

import (
	"strings"
	"testing"
)

func TestStringRedactsSecrets(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		mustHide []string
	}{
		{
			name:     "bearer token",
			in:       "Authorization: Bearer abc123def456",
			mustHide: []string{"abc123def456"},
		},
		{
			name:     "openai key",
			in:       "using key sk-proj-aaaabbbbccccdddd1234",
			mustHide: []string{"sk-proj-aaaabbbbccccdddd1234"},
		},
		{
			name:     "api key assignment",
			in:       "api_key=supersecretvalue",
			mustHide: []string{"supersecretvalue"},
		},
		{
			name:     "url query with session id",
			in:       "posting to https://archive.example.com/upload?session=abc-123",
			mustHide: []string{"session=abc-123"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := String(tc.in)
			for _, hidden := range tc.mustHide {
				if strings.Contains(out, hidden) {
					t.Fatalf("expected %q to be redacted from %q", hidden, out)
				}
			}
		})
	}
}

func TestStringKeepsPlainText(t *testing.T) {
	in := "session turn 3 completed, lsm=0.62"
	if out := String(in); out != in {
		t.Fatalf("plain log line was altered: %q", out)
	}
}

func TestSprintfRedacts(t *testing.T) {
	out := Sprintf("provider error with token=%s", "abcdef123456")
	if strings.Contains(out, "abcdef123456") {
		t.Fatalf("token leaked: %q", out)
	}
}
