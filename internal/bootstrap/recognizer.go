package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/engine/memory"
	"github.com/eleven-am/voice-recognizer/internal/engine/pocketsphinx"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/goccy/go-yaml"
	"go.uber.org/fx"
)

const (
	EngineMemory       = "memory"
	EnginePocketsphinx = "pocketsphinx"
)

// NewEngine returns the decoding engine registered under name.
func NewEngine(name string) (engine.Engine, error) {
	switch name {
	case EngineMemory, "":
		return memory.New(memory.Options{Hypothesize: memory.Keyphrase}), nil
	case EnginePocketsphinx:
		return pocketsphinx.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

// LoadOptions reads an engine option mapping from a YAML file. An empty
// path gives empty options.
func LoadOptions(path string) (recognizer.Options, error) {
	if path == "" {
		return recognizer.Options{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recognizer options: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse recognizer options %s: %w", path, err)
	}
	opts, err := recognizer.OptionsFrom(raw)
	if err != nil {
		return nil, fmt.Errorf("recognizer options %s: %w", path, err)
	}
	return opts, nil
}

func ProvideEngine(cfg *Config, logger *slog.Logger) (engine.Engine, error) {
	eng, err := NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	logger.Info("decoding engine selected", "engine", eng.Name(), "model_dir", cfg.ModelDir)
	return eng, nil
}

func ProvideProfile(cfg *Config) (recognizer.Profile, error) {
	opts, err := LoadOptions(cfg.RecognizerOptions)
	if err != nil {
		return recognizer.Profile{}, err
	}
	p := recognizer.Profile{
		ModelDir:         cfg.ModelDir,
		Options:          opts,
		Keyphrase:        cfg.Keyphrase,
		SilenceDetection: cfg.SilenceDetection,
	}
	if cfg.GrammarFile != "" {
		p.GrammarName = cfg.GrammarName
		p.GrammarFile = cfg.GrammarFile
	}
	return p, nil
}

var RecognizerModule = fx.Options(
	fx.Provide(
		ProvideEngine,
		ProvideProfile,
	),
)
