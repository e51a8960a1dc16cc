// Package engine defines the contract between a recognizer session and the
// streaming decoder that does the actual recognition work.
//
// An [Engine] knows which configuration parameters it accepts and opens
// [Decoder] handles from an immutable [Config]. A Decoder is not safe for
// concurrent use: callers serialize every call against one handle.
package engine

import (
	"errors"
	"sort"
	"strconv"
)

var ErrUnavailable = errors.New("engine: not available in this build")

// Parameter names the session layer sets itself.
const (
	ParamHMM          = "-hmm"
	ParamDict         = "-dict"
	ParamSampleRate   = "-samprate"
	ParamNFFT         = "-nfft"
	ParamLW           = "-lw"
	ParamFwdFlatLW    = "-fwdflatlw"
	ParamPIP          = "-pip"
	ParamUW           = "-uw"
	ParamVADThreshold = "-vad_threshold"
	ParamBestPathLW   = "-bestpathlw"
)

type Engine interface {
	Name() string
	ParamSet
	Open(cfg *Config) (Decoder, error)
}

type ParamSet interface {
	Has(name string) bool
}

// Decoder is one engine instance. Close releases it; no method may be
// called after Close.
type Decoder interface {
	Reinit(cfg *Config) error
	Close() error

	StartUtterance() error
	EndUtterance() error
	ProcessRaw(samples []int16) error
	Hypothesis() (text string, score int32)
	FinalHypothesis() (text string, final bool)
	InSpeech() bool

	SetSearch(name string) error
	Search() string
	SetKeyphrase(name, phrase string) error
	SetKeywords(name, path string) error
	SetGrammarFile(name, path string) error
	SetLanguageModelFile(name, path string) error

	LookupWord(word string) (string, bool)
	AddWord(word, phones string, update bool) error
}

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) Str() string { return v.s }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool { return v.b }

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Config is an immutable parameter snapshot.
type Config struct {
	params map[string]Value
}

func NewConfig(params map[string]Value) *Config {
	cp := make(map[string]Value, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return &Config{params: cp}
}

func (c *Config) Lookup(name string) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	v, ok := c.params[name]
	return v, ok
}

func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.params)
}

// Keys returns the parameter names in sorted order.
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.params))
	for k := range c.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text returns the parameter formatted as a string, or "" when unset.
func (c *Config) Text(name string) string {
	v, ok := c.Lookup(name)
	if !ok {
		return ""
	}
	return v.String()
}

// Float reads a numeric parameter regardless of how it was stored.
func (c *Config) Float(name string) (float64, bool) {
	v, ok := c.Lookup(name)
	if !ok {
		return 0, false
	}
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	}
	return 0, false
}
