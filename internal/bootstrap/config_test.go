package bootstrap

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDR", "ENGINE", "SILENCE_DETECTION", "REDIS_DB", "TRANSCRIPT_TTL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.ServerAddr != ":8080" {
		t.Errorf("unexpected server addr %q", cfg.ServerAddr)
	}
	if cfg.Engine != EngineMemory {
		t.Errorf("unexpected engine %q", cfg.Engine)
	}
	if !cfg.SilenceDetection {
		t.Error("silence detection should default to on")
	}
	if cfg.TranscriptTTL != 24*time.Hour {
		t.Errorf("unexpected ttl %v", cfg.TranscriptTTL)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("ENGINE", EnginePocketsphinx)
	t.Setenv("SILENCE_DETECTION", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TRANSCRIPT_TTL", "90m")
	t.Setenv("KEYPHRASE", "oh mighty computer")

	cfg := LoadConfig()
	if cfg.Engine != EnginePocketsphinx || cfg.SilenceDetection || cfg.RedisDB != 3 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.TranscriptTTL != 90*time.Minute {
		t.Errorf("unexpected ttl %v", cfg.TranscriptTTL)
	}
	if cfg.Keyphrase != "oh mighty computer" {
		t.Errorf("unexpected keyphrase %q", cfg.Keyphrase)
	}
}

func TestGetEnvHelpers_InvalidFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "many")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "soon")

	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d", got)
	}
	if got := getEnvBool("TEST_BOOL", true); !got {
		t.Error("getEnvBool should fall back")
	}
	if got := getEnvDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration = %v", got)
	}
}
