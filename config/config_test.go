package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write fixture config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsToEmptyConfig(t *testing.T) {
	path := writeConfigFile(t, "{}")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Candle.CandleFitTolerance != 0.1 {
		t.Errorf("CandleFitTolerance = %v, want 0.1", cfg.Candle.CandleFitTolerance)
	}
	if cfg.Candle.PatternLength != 2 {
		t.Errorf("PatternLength = %d, want 2", cfg.Candle.PatternLength)
	}
	if cfg.Common.ExitAfter != 2 {
		t.Errorf("ExitAfter = %d, want 2", cfg.Common.ExitAfter)
	}
	if cfg.Common.MomentumOrder != -1 {
		t.Errorf("MomentumOrder = %d, want -1 (disabled)", cfg.Common.MomentumOrder)
	}
	if cfg.Zigzag.Zigzags != 2 {
		t.Errorf("Zigzags = %d, want 2", cfg.Zigzag.Zigzags)
	}
	if cfg.Zigzag.Epsilon != 6 {
		t.Errorf("Epsilon = %d, want 6", cfg.Zigzag.Epsilon)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadRejectsPatternLengthOutOfRange(t *testing.T) {
	path := writeConfigFile(t, `{"candle":{"pattern-length":99}}`)

	if _, err := Load(path); err == nil {
		t.Error("expected a validation error for pattern-length above 31")
	}
}

func TestLoadRejectsZigzagsBelowTwo(t *testing.T) {
	path := writeConfigFile(t, `{"zigzag":{"zigzags":1}}`)

	if _, err := Load(path); err == nil {
		t.Error("expected a validation error for zigzags below 2")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a nonexistent config file")
	}
}

func TestLoadMalformedJSONErrors(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestLoadEnvOverridesTakePrecedenceOverFileDefault(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SERVER_PORT", "9999")

	path := writeConfigFile(t, `{"logging":{"level":"INFO"},"server":{"port":8080}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want DEBUG from env override", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 from env override", cfg.Server.Port)
	}
}

func TestGenerateSampleConfigProducesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")

	if err := GenerateSampleConfig(path); err != nil {
		t.Fatalf("GenerateSampleConfig returned error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of generated sample config returned error: %v", err)
	}
	if cfg.Candle.PatternLength != 2 {
		t.Errorf("PatternLength = %d, want 2", cfg.Candle.PatternLength)
	}
}
