// Package memory is an in-process decoder with no native dependencies.
//
// It does not recognize words. Speech detection is energy based, the
// dictionary and search registry behave like the native engine's, and the
// hypothesis text comes from an optional callback. Servers use it when no
// native engine is compiled in; tests use its failure injection and misuse
// detection to observe what a session does to its handle.
package memory

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/engine"
)

const (
	DefaultSpeechLevel = 0.02
	DefaultSearch      = "_default"
)

type Op string

const (
	OpOpen      Op = "open"
	OpReinit    Op = "reinit"
	OpStart     Op = "start"
	OpEnd       Op = "end"
	OpProcess   Op = "process"
	OpSearch    Op = "search"
	OpAddWord   Op = "add_word"
	OpSetSearch Op = "set_search"
)

type SearchKind string

const (
	SearchKeyphrase SearchKind = "keyphrase"
	SearchKeywords  SearchKind = "keywords"
	SearchGrammar   SearchKind = "grammar"
	SearchNgram     SearchKind = "ngram"
)

type Search struct {
	Name string
	Kind SearchKind
	Arg  string
}

// Utterance summarizes the audio seen since the utterance started.
type Utterance struct {
	Search       Search
	Chunks       int
	Samples      int
	SpeechChunks int
}

type HypothesisFunc func(u Utterance) (text string, score int32)

// Keyphrase hypothesizes the active keyphrase once the utterance holds
// speech. Other searches never produce a hypothesis. The score is the
// number of speech chunks.
func Keyphrase(u Utterance) (string, int32) {
	if u.Search.Kind != SearchKeyphrase || u.SpeechChunks == 0 {
		return "", 0
	}
	return u.Search.Arg, int32(u.SpeechChunks)
}

type Options struct {
	// SpeechLevel is the RMS level, in [0,1], at or above which a chunk
	// counts as speech.
	SpeechLevel float64
	Dictionary  map[string]string
	Hypothesize HypothesisFunc
	// Delay is slept inside every ProcessRaw call.
	Delay time.Duration
	// Phones, when set, is the phone set AddWord accepts. Pronunciations
	// using any other phone are rejected.
	Phones []string
}

type Stats struct {
	Opened     int
	Closed     int
	Processed  int
	Concurrent int
}

type Engine struct {
	opts Options

	mu       sync.Mutex
	failures map[Op]error
	decoders []*Decoder
	stats    Stats
}

func New(opts Options) *Engine {
	if opts.SpeechLevel <= 0 {
		opts.SpeechLevel = DefaultSpeechLevel
	}
	return &Engine{
		opts:     opts,
		failures: make(map[Op]error),
	}
}

func (e *Engine) Name() string { return "memory" }

func (e *Engine) Has(name string) bool {
	return engine.StandardParams.Has(name)
}

// Fail makes every later call of op fail with err, on all decoders.
func (e *Engine) Fail(op Op, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.failures, op)
		return
	}
	e.failures[op] = err
}

func (e *Engine) failure(op Op) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failures[op]
}

func (e *Engine) unknownPhone(phones string) (string, bool) {
	if len(e.opts.Phones) == 0 {
		return "", false
	}
	for _, p := range strings.Fields(phones) {
		known := false
		for _, q := range e.opts.Phones {
			if p == q {
				known = true
				break
			}
		}
		if !known {
			return p, true
		}
	}
	return "", false
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Last returns the most recently opened decoder, or nil.
func (e *Engine) Last() *Decoder {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.decoders) == 0 {
		return nil
	}
	return e.decoders[len(e.decoders)-1]
}

func (e *Engine) Open(cfg *engine.Config) (engine.Decoder, error) {
	if err := e.failure(OpOpen); err != nil {
		return nil, err
	}
	d := &Decoder{eng: e}
	if err := d.configure(cfg); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.decoders = append(e.decoders, d)
	e.stats.Opened++
	e.mu.Unlock()
	return d, nil
}

type Decoder struct {
	eng  *Engine
	busy atomic.Int32

	mu       sync.Mutex
	cfg      *engine.Config
	closed   bool
	inUtt    bool
	inSpeech bool
	searches map[string]Search
	current  string
	dict     map[string]string
	commits  int
	utt      Utterance
}

func (d *Decoder) configure(cfg *engine.Config) error {
	dict := make(map[string]string, len(d.eng.opts.Dictionary))
	for w, p := range d.eng.opts.Dictionary {
		dict[w] = p
	}
	if path := cfg.Text(engine.ParamDict); path != "" {
		if err := loadDictionary(path, dict); err != nil {
			return err
		}
	}

	searches := make(map[string]Search)
	def := Search{Name: DefaultSearch, Kind: SearchNgram, Arg: cfg.Text("-lm")}
	switch {
	case cfg.Text("-keyphrase") != "":
		def = Search{Name: DefaultSearch, Kind: SearchKeyphrase, Arg: cfg.Text("-keyphrase")}
	case cfg.Text("-kws") != "":
		def = Search{Name: DefaultSearch, Kind: SearchKeywords, Arg: cfg.Text("-kws")}
	case cfg.Text("-jsgf") != "":
		def = Search{Name: DefaultSearch, Kind: SearchGrammar, Arg: cfg.Text("-jsgf")}
	}
	searches[DefaultSearch] = def

	d.cfg = cfg
	d.dict = dict
	d.searches = searches
	d.current = DefaultSearch
	d.inUtt = false
	d.inSpeech = false
	d.utt = Utterance{}
	return nil
}

// loadDictionary reads a CMU style pronunciation dictionary. A missing file
// leaves the dictionary as seeded.
func loadDictionary(path string, dict map[string]string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("memory: open dictionary: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";;") {
			continue
		}
		word, phones, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		if _, exists := dict[word]; !exists {
			dict[word] = strings.TrimSpace(phones)
		}
	}
	return sc.Err()
}

// enter marks a call in progress and panics on use after Close, which a
// native engine would answer with memory corruption.
func (d *Decoder) enter(op string) func() {
	if d.busy.Add(1) > 1 {
		d.eng.mu.Lock()
		d.eng.stats.Concurrent++
		d.eng.mu.Unlock()
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.busy.Add(-1)
		panic("memory: " + op + " on freed decoder")
	}
	return func() {
		d.mu.Unlock()
		d.busy.Add(-1)
	}
}

func (d *Decoder) Reinit(cfg *engine.Config) error {
	defer d.enter("reinit")()
	if err := d.eng.failure(OpReinit); err != nil {
		return err
	}
	return d.configure(cfg)
}

func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		panic("memory: decoder freed twice")
	}
	d.closed = true

	d.eng.mu.Lock()
	d.eng.stats.Closed++
	d.eng.mu.Unlock()
	return nil
}

func (d *Decoder) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Decoder) StartUtterance() error {
	defer d.enter("start_utt")()
	if err := d.eng.failure(OpStart); err != nil {
		return err
	}
	if d.inUtt {
		return errors.New("memory: utterance already started")
	}
	d.inUtt = true
	d.inSpeech = false
	d.utt = Utterance{Search: d.searches[d.current]}
	return nil
}

func (d *Decoder) EndUtterance() error {
	defer d.enter("end_utt")()
	if err := d.eng.failure(OpEnd); err != nil {
		return err
	}
	if !d.inUtt {
		return errors.New("memory: no utterance in progress")
	}
	d.inUtt = false
	return nil
}

func (d *Decoder) InUtterance() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inUtt
}

func (d *Decoder) ProcessRaw(samples []int16) error {
	defer d.enter("process_raw")()
	if d.eng.opts.Delay > 0 {
		time.Sleep(d.eng.opts.Delay)
	}
	if err := d.eng.failure(OpProcess); err != nil {
		return err
	}
	if !d.inUtt {
		return errors.New("memory: no utterance in progress")
	}

	d.inSpeech = rms(samples) >= d.eng.opts.SpeechLevel
	d.utt.Chunks++
	d.utt.Samples += len(samples)
	if d.inSpeech {
		d.utt.SpeechChunks++
	}

	d.eng.mu.Lock()
	d.eng.stats.Processed++
	d.eng.mu.Unlock()
	return nil
}

func (d *Decoder) Hypothesis() (string, int32) {
	defer d.enter("get_hyp")()
	if d.eng.opts.Hypothesize == nil || d.utt.Chunks == 0 {
		return "", 0
	}
	return d.eng.opts.Hypothesize(d.utt)
}

// FinalHypothesis reports the current hypothesis; it is final once the
// speaker has gone quiet.
func (d *Decoder) FinalHypothesis() (string, bool) {
	defer d.enter("get_hyp_final")()
	if d.eng.opts.Hypothesize == nil || d.utt.Chunks == 0 {
		return "", !d.inSpeech
	}
	text, _ := d.eng.opts.Hypothesize(d.utt)
	return text, !d.inSpeech
}

func (d *Decoder) InSpeech() bool {
	defer d.enter("get_in_speech")()
	return d.inSpeech
}

func (d *Decoder) SetSearch(name string) error {
	defer d.enter("set_search")()
	if err := d.eng.failure(OpSetSearch); err != nil {
		return err
	}
	if _, ok := d.searches[name]; !ok {
		return fmt.Errorf("memory: no search named %q", name)
	}
	d.current = name
	return nil
}

func (d *Decoder) Search() string {
	defer d.enter("get_search")()
	return d.current
}

// Searches lists the installed search modes by name.
func (d *Decoder) Searches() map[string]Search {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]Search, len(d.searches))
	for k, v := range d.searches {
		out[k] = v
	}
	return out
}

func (d *Decoder) install(s Search, needsFile bool) error {
	defer d.enter("set_" + string(s.Kind))()
	if err := d.eng.failure(OpSearch); err != nil {
		return err
	}
	if needsFile {
		if _, err := os.Stat(s.Arg); err != nil {
			return fmt.Errorf("memory: %s search %q: %w", s.Kind, s.Name, err)
		}
	}
	if s.Kind == SearchKeyphrase {
		for _, w := range strings.Fields(strings.ToLower(s.Arg)) {
			if len(d.dict) > 0 {
				if _, ok := d.dict[w]; !ok {
					return fmt.Errorf("memory: keyphrase word %q not in dictionary", w)
				}
			}
		}
	}
	d.searches[s.Name] = s
	return nil
}

func (d *Decoder) SetKeyphrase(name, phrase string) error {
	return d.install(Search{Name: name, Kind: SearchKeyphrase, Arg: phrase}, false)
}

func (d *Decoder) SetKeywords(name, path string) error {
	return d.install(Search{Name: name, Kind: SearchKeywords, Arg: path}, true)
}

func (d *Decoder) SetGrammarFile(name, path string) error {
	return d.install(Search{Name: name, Kind: SearchGrammar, Arg: path}, true)
}

func (d *Decoder) SetLanguageModelFile(name, path string) error {
	return d.install(Search{Name: name, Kind: SearchNgram, Arg: path}, true)
}

func (d *Decoder) LookupWord(word string) (string, bool) {
	defer d.enter("lookup_word")()
	p, ok := d.dict[word]
	return p, ok
}

func (d *Decoder) AddWord(word, phones string, update bool) error {
	defer d.enter("add_word")()
	if err := d.eng.failure(OpAddWord); err != nil {
		return err
	}
	if strings.TrimSpace(phones) == "" {
		return fmt.Errorf("memory: empty pronunciation for %q", word)
	}
	if _, exists := d.dict[word]; exists {
		return fmt.Errorf("memory: word %q already in dictionary", word)
	}
	if phone, ok := d.eng.unknownPhone(phones); ok {
		return fmt.Errorf("memory: unknown phone %q in pronunciation of %q", phone, word)
	}
	d.dict[word] = phones
	if update {
		d.commits++
	}
	return nil
}

// Commits counts AddWord calls that asked for a search rebuild.
func (d *Decoder) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

func (d *Decoder) Config() *engine.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// rms is the root mean square of the samples on a [0,1] scale.
func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}
