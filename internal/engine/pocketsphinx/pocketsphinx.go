//go:build pocketsphinx

// Package pocketsphinx binds the CMU PocketSphinx decoder (5prealpha API)
// via CGo.
//
// Build with -tags pocketsphinx. The C libraries are located through
// pkg-config. Without the tag the package compiles to a stub whose Open
// returns engine.ErrUnavailable.
//
// A Decoder wraps one ps_decoder_t. It must not be used from more than one
// goroutine at a time; the recognizer session serializes every call.
package pocketsphinx

/*
#cgo pkg-config: pocketsphinx sphinxbase
#include <stdlib.h>
#include <pocketsphinx.h>
#include <sphinxbase/cmd_ln.h>
#include <sphinxbase/ckd_alloc.h>

static cmd_ln_t *vr_default_config(void) {
	return cmd_ln_init(NULL, ps_args(), TRUE, NULL);
}

static int vr_has_param(cmd_ln_t *cfg, const char *name) {
	return cmd_ln_exists_r(cfg, name);
}

static void vr_set_bool(cmd_ln_t *cfg, const char *name, int v) {
	cmd_ln_set_int_r(cfg, name, v ? TRUE : FALSE);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/eleven-am/voice-recognizer/internal/engine"
)

type Engine struct {
	once     sync.Once
	template *C.cmd_ln_t
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string { return "pocketsphinx" }

// Has reports whether the decoder's argument table defines name.
func (e *Engine) Has(name string) bool {
	e.once.Do(func() {
		e.template = C.vr_default_config()
	})
	if e.template == nil {
		return false
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return C.vr_has_param(e.template, cName) != 0
}

func (e *Engine) Open(cfg *engine.Config) (engine.Decoder, error) {
	c, err := buildConfig(cfg)
	if err != nil {
		return nil, err
	}
	// ps_init retains its own reference to the config.
	ps := C.ps_init(c)
	C.cmd_ln_free_r(c)
	if ps == nil {
		return nil, errors.New("pocketsphinx: ps_init failed")
	}

	d := &Decoder{ps: ps}
	runtime.SetFinalizer(d, (*Decoder).Close)
	return d, nil
}

func buildConfig(cfg *engine.Config) (*C.cmd_ln_t, error) {
	c := C.vr_default_config()
	if c == nil {
		return nil, errors.New("pocketsphinx: cmd_ln_init failed")
	}

	for _, name := range cfg.Keys() {
		v, _ := cfg.Lookup(name)
		cName := C.CString(name)
		if C.vr_has_param(c, cName) == 0 {
			C.free(unsafe.Pointer(cName))
			C.cmd_ln_free_r(c)
			return nil, fmt.Errorf("pocketsphinx: unknown parameter %s", name)
		}

		switch v.Kind() {
		case engine.KindString:
			cVal := C.CString(v.Str())
			C.cmd_ln_set_str_r(c, cName, cVal)
			C.free(unsafe.Pointer(cVal))
		case engine.KindInt:
			C.cmd_ln_set_int_r(c, cName, C.long(v.Int()))
		case engine.KindFloat:
			C.cmd_ln_set_float_r(c, cName, C.double(v.Float()))
		case engine.KindBool:
			b := C.int(0)
			if v.Bool() {
				b = 1
			}
			C.vr_set_bool(c, cName, b)
		}
		C.free(unsafe.Pointer(cName))
	}
	return c, nil
}

type Decoder struct {
	ps *C.ps_decoder_t
}

func (d *Decoder) handle() *C.ps_decoder_t {
	if d.ps == nil {
		panic("pocketsphinx: decoder used after Close")
	}
	return d.ps
}

func (d *Decoder) Reinit(cfg *engine.Config) error {
	c, err := buildConfig(cfg)
	if err != nil {
		return err
	}
	ret := C.ps_reinit(d.handle(), c)
	C.cmd_ln_free_r(c)
	if ret < 0 {
		return errors.New("pocketsphinx: ps_reinit failed")
	}
	return nil
}

// Close frees the decoder. It is safe to call more than once.
func (d *Decoder) Close() error {
	if d.ps != nil {
		C.ps_free(d.ps)
		d.ps = nil
		runtime.SetFinalizer(d, nil)
	}
	return nil
}

func (d *Decoder) StartUtterance() error {
	if C.ps_start_utt(d.handle()) < 0 {
		return errors.New("pocketsphinx: ps_start_utt failed")
	}
	return nil
}

func (d *Decoder) EndUtterance() error {
	if C.ps_end_utt(d.handle()) < 0 {
		return errors.New("pocketsphinx: ps_end_utt failed")
	}
	return nil
}

func (d *Decoder) ProcessRaw(samples []int16) error {
	ps := d.handle()
	if len(samples) == 0 {
		return nil
	}
	n := C.ps_process_raw(ps, (*C.int16)(unsafe.Pointer(&samples[0])), C.size_t(len(samples)), C.FALSE, C.FALSE)
	runtime.KeepAlive(samples)
	if n < 0 {
		return errors.New("pocketsphinx: ps_process_raw failed")
	}
	return nil
}

func (d *Decoder) Hypothesis() (string, int32) {
	var score C.int32
	hyp := C.ps_get_hyp(d.handle(), &score)
	if hyp == nil {
		return "", int32(score)
	}
	return C.GoString(hyp), int32(score)
}

// FinalHypothesis returns the current hypothesis. The 5prealpha API has no
// finality flag, so a hypothesis counts as final once the voice activity
// detector reports silence.
func (d *Decoder) FinalHypothesis() (string, bool) {
	ps := d.handle()
	var score C.int32
	final := C.ps_get_in_speech(ps) == 0
	hyp := C.ps_get_hyp(ps, &score)
	if hyp == nil {
		return "", final
	}
	return C.GoString(hyp), final
}

func (d *Decoder) InSpeech() bool {
	return C.ps_get_in_speech(d.handle()) != 0
}

func (d *Decoder) SetSearch(name string) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	if C.ps_set_search(d.handle(), cName) < 0 {
		return fmt.Errorf("pocketsphinx: no search named %q", name)
	}
	return nil
}

func (d *Decoder) Search() string {
	s := C.ps_get_search(d.handle())
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func (d *Decoder) setNamed(name, arg string, fn func(ps *C.ps_decoder_t, name, arg *C.char) C.int) error {
	ps := d.handle()
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cArg := C.CString(arg)
	defer C.free(unsafe.Pointer(cArg))
	if fn(ps, cName, cArg) < 0 {
		return fmt.Errorf("pocketsphinx: could not add search %q", name)
	}
	return nil
}

func (d *Decoder) SetKeyphrase(name, phrase string) error {
	return d.setNamed(name, phrase, func(ps *C.ps_decoder_t, n, a *C.char) C.int {
		return C.ps_set_keyphrase(ps, n, a)
	})
}

func (d *Decoder) SetKeywords(name, path string) error {
	return d.setNamed(name, path, func(ps *C.ps_decoder_t, n, a *C.char) C.int {
		return C.ps_set_kws(ps, n, a)
	})
}

func (d *Decoder) SetGrammarFile(name, path string) error {
	return d.setNamed(name, path, func(ps *C.ps_decoder_t, n, a *C.char) C.int {
		return C.ps_set_jsgf_file(ps, n, a)
	})
}

func (d *Decoder) SetLanguageModelFile(name, path string) error {
	return d.setNamed(name, path, func(ps *C.ps_decoder_t, n, a *C.char) C.int {
		return C.ps_set_lm_file(ps, n, a)
	})
}

// LookupWord returns the word's phones. The C result is owned by the caller
// and freed here.
func (d *Decoder) LookupWord(word string) (string, bool) {
	ps := d.handle()
	cWord := C.CString(word)
	defer C.free(unsafe.Pointer(cWord))
	phones := C.ps_lookup_word(ps, cWord)
	if phones == nil {
		return "", false
	}
	defer C.ckd_free(unsafe.Pointer(phones))
	return C.GoString(phones), true
}

func (d *Decoder) AddWord(word, phones string, update bool) error {
	ps := d.handle()
	cWord := C.CString(word)
	defer C.free(unsafe.Pointer(cWord))
	cPhones := C.CString(phones)
	defer C.free(unsafe.Pointer(cPhones))
	u := C.int(0)
	if update {
		u = 1
	}
	if C.ps_add_word(ps, cWord, cPhones, u) < 0 {
		return fmt.Errorf("pocketsphinx: could not add word %q", word)
	}
	return nil
}
