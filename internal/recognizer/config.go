package recognizer

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/eleven-am/voice-recognizer/internal/engine"
)

const (
	DefaultModelDir   = "/usr/local/share/pocketsphinx/model"
	DefaultSampleRate = 44100
	DefaultNFFT       = 2048
)

// Options is a loosely typed engine parameter set, keyed by parameter name
// including the leading dash.
type Options map[string]any

// floatParams are always passed to the engine as floats. The engine
// misreads integer values for these keys.
var floatParams = map[string]bool{
	engine.ParamSampleRate:   true,
	engine.ParamLW:           true,
	engine.ParamFwdFlatLW:    true,
	engine.ParamPIP:          true,
	engine.ParamUW:           true,
	engine.ParamVADThreshold: true,
	engine.ParamBestPathLW:   true,
}

// OptionsFrom converts decoded YAML or JSON into Options. Keys must be
// strings.
func OptionsFrom(v any) (Options, error) {
	switch m := v.(type) {
	case nil:
		return Options{}, nil
	case Options:
		return m, nil
	case map[string]any:
		return Options(m), nil
	case map[any]any:
		out := make(Options, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, validationError("options", "all argument keys must be strings, got %T", k)
			}
			out[s] = val
		}
		return out, nil
	}
	return nil, validationError("options", "expected options to be a mapping, got %T", v)
}

type ConfigBuilder struct {
	params   engine.ParamSet
	modelDir string
}

func NewConfigBuilder(params engine.ParamSet, modelDir string) *ConfigBuilder {
	if modelDir == "" {
		modelDir = DefaultModelDir
	}
	return &ConfigBuilder{params: params, modelDir: modelDir}
}

func (b *ConfigBuilder) defaults() Options {
	return Options{
		engine.ParamHMM:        filepath.Join(b.modelDir, "en-us", "en-us"),
		engine.ParamDict:       filepath.Join(b.modelDir, "en-us", "cmudict-en-us.dict"),
		engine.ParamSampleRate: DefaultSampleRate,
		engine.ParamNFFT:       DefaultNFFT,
	}
}

// Build merges opts over the defaults and validates every key against the
// engine. opts is not modified.
func (b *ConfigBuilder) Build(opts Options) (*engine.Config, error) {
	merged := b.defaults()
	for k, v := range opts {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make(map[string]engine.Value, len(merged))
	for _, key := range keys {
		if !b.params.Has(key) {
			return nil, validationError("config", "unknown engine parameter: %s", key)
		}
		v, ok := coerce(key, merged[key])
		if !ok {
			return nil, validationError("config", "unknown value type for key: %s (%T)", key, merged[key])
		}
		params[key] = v
	}
	return engine.NewConfig(params), nil
}

func coerce(key string, v any) (engine.Value, bool) {
	switch x := v.(type) {
	case string:
		return engine.StringValue(x), true
	case bool:
		return engine.BoolValue(x), true
	case int:
		return integral(key, int64(x)), true
	case int8:
		return integral(key, int64(x)), true
	case int16:
		return integral(key, int64(x)), true
	case int32:
		return integral(key, int64(x)), true
	case int64:
		return integral(key, x), true
	case uint:
		return number(key, float64(x)), true
	case uint8:
		return integral(key, int64(x)), true
	case uint16:
		return integral(key, int64(x)), true
	case uint32:
		return integral(key, int64(x)), true
	case uint64:
		return number(key, float64(x)), true
	case float32:
		return number(key, float64(x)), true
	case float64:
		return number(key, x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return engine.Value{}, false
		}
		return number(key, f), true
	}
	return engine.Value{}, false
}

// number treats whole values in the 32-bit range as integers.
func number(key string, f float64) engine.Value {
	if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxUint32 {
		return integral(key, int64(f))
	}
	return engine.FloatValue(f)
}

func integral(key string, i int64) engine.Value {
	if floatParams[key] || i < math.MinInt32 || i > math.MaxUint32 {
		return engine.FloatValue(float64(i))
	}
	return engine.IntValue(i)
}

// describe renders the config as engine command line arguments.
func describe(cfg *engine.Config) string {
	out := ""
	for i, k := range cfg.Keys() {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s %s", k, cfg.Text(k))
	}
	return out
}
