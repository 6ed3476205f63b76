package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFilterFieldsDropsSecrets(t *testing.T) {
	got := filterFields([]zap.Field{
		zap.String("dsn", "postgres://u:p@db/x"),
		zap.String("redis_password", "x"),
		zap.String("api_key", "k"),
		zap.String("store_id", "maxi"),
	})
	if len(got) != 1 || got[0].Key != "store_id" {
		t.Errorf("filterFields() = %v", got)
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	prev := Logger
	t.Cleanup(func() {
		Logger = prev
		zap.ReplaceGlobals(prev)
	})

	path := filepath.Join(t.TempDir(), "logs", "pricer.log")
	if err := InitLogger(LoggerOptions{Level: "info", File: path}); err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	LogInfo("價格計算完成", zap.String("run_id", "r1"))
	LogDebug("hidden")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"run_id":"r1"`) || !strings.Contains(out, `"service":"grocery-pricer"`) {
		t.Errorf("log file = %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entries must be filtered at info level")
	}
}
