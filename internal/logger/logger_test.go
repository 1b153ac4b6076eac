package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ytakahashi/todo-sync/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{config.EnvDev, zerolog.DebugLevel},
		{config.EnvProd, zerolog.InfoLevel},
		{config.EnvLocal, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.env, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New(%q) error: %v", tt.env, err)
		}
		if got := l.GetLevel(); got != tt.want {
			t.Errorf("New(%q) level: got %s, want %s", tt.env, got, tt.want)
		}
	}
}

func TestNewUnknownEnv(t *testing.T) {
	if _, err := New("staging", &bytes.Buffer{}); err == nil {
		t.Fatal("New(staging) = nil error, want error")
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.EnvProd, &buf)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Info().Str("user_id", "u1").Msg("created todo")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "created todo" {
		t.Errorf("message: got %v", entry["message"])
	}
	if entry["user_id"] != "u1" {
		t.Errorf("user_id: got %v", entry["user_id"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp field missing")
	}
}
