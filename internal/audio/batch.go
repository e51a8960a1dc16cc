package audio

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
)

const DefaultChunkSize = 4096

type BatchConfig struct {
	Profile recognizer.Profile
	Words   map[string]string
	// ChunkSize is the number of samples per write, at the engine rate.
	ChunkSize int
	// Async feeds chunks through Write and waits for each job, instead of
	// WriteSync. Utterances are then only closed at the end of the input.
	Async     bool
	OnHyp     func(text string, score int32)
	OnSegment func(Segment)
	Logger    *slog.Logger
}

// Segment is one utterance and its final hypothesis.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
	Final bool
}

type BatchTranscribeResult struct {
	Text               string
	Search             string
	SampleRate         int
	Segments           []Segment
	AudioDuration      time.Duration
	ProcessingDuration time.Duration
}

// BatchTranscribe runs pcm through a fresh recognizer session. When silence
// detection closes an utterance the next chunk starts a new one, so long
// input yields one segment per utterance.
func BatchTranscribe(ctx context.Context, eng engine.Engine, cfg BatchConfig, pcm *PCM) (*BatchTranscribeResult, error) {
	began := time.Now()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sess, err := cfg.Profile.Open(eng, cfg.Words, logger)
	if err != nil {
		return nil, err
	}
	defer sess.Free()

	rate := sess.SampleRate()
	samples := ResampleInt16(pcm.Samples, pcm.SampleRate, rate)
	toDuration := func(n int) time.Duration {
		return time.Duration(n) * time.Second / time.Duration(rate)
	}

	var (
		mu       sync.Mutex
		fed      int
		segStart int
		segments []Segment
	)
	sess.On(recognizer.EventStart, recognizer.SignalFunc(func() {
		mu.Lock()
		segStart = fed
		mu.Unlock()
	}))
	sess.On(recognizer.EventHypFinal, recognizer.HypFinalFunc(func(text string, final bool) {
		if text == "" {
			return
		}
		mu.Lock()
		seg := Segment{Start: toDuration(segStart), End: toDuration(fed), Text: text, Final: final}
		segments = append(segments, seg)
		mu.Unlock()
		if cfg.OnSegment != nil {
			cfg.OnSegment(seg)
		}
	}))
	if cfg.OnHyp != nil {
		sess.On(recognizer.EventHyp, recognizer.HypFunc(cfg.OnHyp))
	}

	size := cfg.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	for _, chunk := range Chunks(samples, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sess.State() != recognizer.StateProcessing {
			if err := sess.Start(); err != nil {
				return nil, err
			}
		}

		mu.Lock()
		fed += len(chunk)
		mu.Unlock()

		if cfg.Async {
			if _, err := sess.Write(chunk).Wait(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if err := sess.WriteSync(chunk); err != nil {
			return nil, err
		}
	}
	if err := sess.Stop(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	result := &BatchTranscribeResult{
		Text:               strings.Join(texts, " "),
		Search:             sess.Search(),
		SampleRate:         rate,
		Segments:           segments,
		AudioDuration:      toDuration(len(samples)),
		ProcessingDuration: time.Since(began),
	}
	logger.Debug("batch transcription complete",
		"segments", len(segments),
		"audio_duration", result.AudioDuration,
		"processing_duration", result.ProcessingDuration)
	return result, nil
}
