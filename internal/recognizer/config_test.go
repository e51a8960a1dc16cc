package recognizer

import (
	"encoding/json"
	"testing"

	"github.com/eleven-am/voice-recognizer/internal/engine"
)

func TestConfigBuilder_Defaults(t *testing.T) {
	b := NewConfigBuilder(engine.StandardParams, "/models")
	cfg, err := b.Build(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tests := []struct {
		key  string
		kind engine.Kind
		want string
	}{
		{engine.ParamHMM, engine.KindString, "/models/en-us/en-us"},
		{engine.ParamDict, engine.KindString, "/models/en-us/cmudict-en-us.dict"},
		{engine.ParamSampleRate, engine.KindFloat, "44100"},
		{engine.ParamNFFT, engine.KindInt, "2048"},
	}
	for _, tt := range tests {
		v, ok := cfg.Lookup(tt.key)
		if !ok {
			t.Errorf("%s: missing default", tt.key)
			continue
		}
		if v.Kind() != tt.kind {
			t.Errorf("%s: kind %s, want %s", tt.key, v.Kind(), tt.kind)
		}
		if v.String() != tt.want {
			t.Errorf("%s: value %q, want %q", tt.key, v.String(), tt.want)
		}
	}
	if cfg.Len() != 4 {
		t.Errorf("expected 4 parameters, got %d", cfg.Len())
	}
}

func TestConfigBuilder_DefaultModelDir(t *testing.T) {
	cfg, err := NewConfigBuilder(engine.StandardParams, "").Build(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := cfg.Text(engine.ParamHMM); got != DefaultModelDir+"/en-us/en-us" {
		t.Errorf("unexpected hmm path %q", got)
	}
}

func TestConfigBuilder_ExplicitValuesWin(t *testing.T) {
	b := NewConfigBuilder(engine.StandardParams, "/models")

	tests := []struct {
		name  string
		value any
		kind  engine.Kind
		want  string
	}{
		{"integer literal", 16000, engine.KindFloat, "16000"},
		{"float literal", 8000.0, engine.KindFloat, "8000"},
		{"string literal", "22050", engine.KindString, "22050"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := b.Build(Options{engine.ParamSampleRate: tt.value})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			v, _ := cfg.Lookup(engine.ParamSampleRate)
			if v.Kind() != tt.kind || v.String() != tt.want {
				t.Errorf("got %s %q, want %s %q", v.Kind(), v.String(), tt.kind, tt.want)
			}
		})
	}
}

func TestConfigBuilder_Coercion(t *testing.T) {
	b := NewConfigBuilder(engine.StandardParams, "/models")

	tests := []struct {
		key   string
		value any
		kind  engine.Kind
	}{
		{"-lw", 10, engine.KindFloat},
		{"-fwdflatlw", int64(10), engine.KindFloat},
		{"-pip", uint8(1), engine.KindFloat},
		{"-uw", 1, engine.KindFloat},
		{"-vad_threshold", 3, engine.KindFloat},
		{"-bestpathlw", 9.0, engine.KindFloat},
		{"-beam", 1e-48, engine.KindFloat},
		{"-maxwpf", 10, engine.KindInt},
		{"-nfft", 512.0, engine.KindInt},
		{"-topn", uint64(4), engine.KindInt},
		{"-ds", json.Number("2"), engine.KindInt},
		{"-wip", json.Number("0.65"), engine.KindFloat},
		{"-seed", int64(1) << 40, engine.KindFloat},
		{"-verbose", true, engine.KindBool},
		{"-keyphrase", "oh mighty computer", engine.KindString},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg, err := b.Build(Options{tt.key: tt.value})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			v, _ := cfg.Lookup(tt.key)
			if v.Kind() != tt.kind {
				t.Errorf("kind %s, want %s", v.Kind(), tt.kind)
			}
		})
	}
}

func TestConfigBuilder_Validation(t *testing.T) {
	b := NewConfigBuilder(engine.StandardParams, "/models")

	tests := []struct {
		name string
		opts Options
	}{
		{"unknown key", Options{"-bogus": 1}},
		{"key without dash", Options{"samprate": 16000}},
		{"slice value", Options{"-lw": []int{1}}},
		{"nil value", Options{"-lw": nil}},
		{"map value", Options{"-hmm": map[string]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestConfigBuilder_DoesNotMutateOptions(t *testing.T) {
	b := NewConfigBuilder(engine.StandardParams, "/models")
	opts := Options{"-lw": 10}
	if _, err := b.Build(opts); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(opts) != 1 {
		t.Errorf("options were modified: %v", opts)
	}
	if _, ok := opts[engine.ParamHMM]; ok {
		t.Error("defaults leaked into caller options")
	}
}

func TestOptionsFrom(t *testing.T) {
	opts, err := OptionsFrom(map[any]any{"-lw": 10, "-verbose": false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts) != 2 || opts["-lw"] != 10 {
		t.Errorf("unexpected options %v", opts)
	}

	if _, err := OptionsFrom(map[any]any{1: "x"}); !IsValidation(err) {
		t.Errorf("expected validation error for non-string key, got %v", err)
	}
	if _, err := OptionsFrom([]string{"-lw"}); !IsValidation(err) {
		t.Errorf("expected validation error for non-mapping, got %v", err)
	}
	if opts, err := OptionsFrom(nil); err != nil || len(opts) != 0 {
		t.Errorf("nil should give empty options, got %v, %v", opts, err)
	}
}

func TestDescribe(t *testing.T) {
	cfg := engine.NewConfig(map[string]engine.Value{
		"-nfft": engine.IntValue(512),
		"-hmm":  engine.StringValue("/m"),
	})
	if got := describe(cfg); got != "-hmm /m -nfft 512" {
		t.Errorf("unexpected description %q", got)
	}
}
