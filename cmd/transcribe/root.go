package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/eleven-am/voice-recognizer/internal/audio"
	"github.com/eleven-am/voice-recognizer/internal/bootstrap"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
	"github.com/spf13/cobra"
)

type options struct {
	engine      string
	modelDir    string
	optionsFile string
	grammar     string
	keyphrase   string
	format      string
	rate        int
	chunk       int
	async       bool
	noSilence   bool
	verbose     bool
	jsonOutput  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "transcribe [flags] <file>",
		Short: "Transcribe an audio file",
		Long: `Transcribe a FLAC or raw PCM file with an embedded decoder.

The file is fed through one recognizer session in fixed-size chunks. With
silence detection on, every pause closes an utterance and the next chunk
opens a new one, so the output lists one segment per utterance.

Example option file (options.yaml):
  "-samprate": 16000
  "-lw": 6.5

Examples:
  transcribe --engine pocketsphinx --model-dir /usr/share/pocketsphinx/model recording.flac
  transcribe --keyphrase "oh mighty computer" --rate 16000 capture.raw
  transcribe --grammar digits=digits.gram --options options.yaml --json call.flac`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cmd, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.engine, "engine", bootstrap.EngineMemory, "decoding engine (memory or pocketsphinx)")
	f.StringVar(&opts.modelDir, "model-dir", "", "directory holding the acoustic model and dictionary")
	f.StringVar(&opts.optionsFile, "options", "", "YAML file with engine options")
	f.StringVar(&opts.grammar, "grammar", "", "grammar search as name=path")
	f.StringVar(&opts.keyphrase, "keyphrase", "", "keyphrase to spot")
	f.StringVar(&opts.format, "format", "", "input format (flac, s16le, f32le); detected when empty")
	f.IntVar(&opts.rate, "rate", 0, "sample rate of raw input")
	f.IntVar(&opts.chunk, "chunk", audio.DefaultChunkSize, "samples per write")
	f.BoolVar(&opts.async, "async", false, "decode on the session worker and wait for each chunk")
	f.BoolVar(&opts.noSilence, "no-silence-detection", false, "do not close utterances on silence")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print partial hypotheses and debug logs")
	f.BoolVar(&opts.jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

// parseGrammar splits a name=path flag value.
func parseGrammar(v string) (name, path string, err error) {
	name, path, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
		return "", "", fmt.Errorf("grammar must be name=path, got %q", v)
	}
	return strings.TrimSpace(name), strings.TrimSpace(path), nil
}

func (o *options) profile() (recognizer.Profile, error) {
	recOpts, err := bootstrap.LoadOptions(o.optionsFile)
	if err != nil {
		return recognizer.Profile{}, err
	}
	p := recognizer.Profile{
		ModelDir:         o.modelDir,
		Options:          recOpts,
		Keyphrase:        o.keyphrase,
		SilenceDetection: !o.noSilence,
	}
	if o.grammar != "" {
		if p.GrammarName, p.GrammarFile, err = parseGrammar(o.grammar); err != nil {
			return recognizer.Profile{}, err
		}
	}
	return p, nil
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, path string) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	profile, err := opts.profile()
	if err != nil {
		return err
	}
	eng, err := bootstrap.NewEngine(opts.engine)
	if err != nil {
		return err
	}

	var format audio.Format
	if opts.format != "" {
		if format, err = audio.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	pcm, err := audio.Decode(file, format, opts.rate)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	out := newPrinter(cmd.OutOrStdout(), opts.verbose && !opts.jsonOutput)
	cfg := audio.BatchConfig{
		Profile:   profile,
		ChunkSize: opts.chunk,
		Async:     opts.async,
		Logger:    logger,
	}
	if !opts.jsonOutput {
		cfg.OnHyp = out.hyp
		cfg.OnSegment = out.segment
	}

	result, err := audio.BatchTranscribe(ctx, eng, cfg, pcm)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(newReport(path, eng.Name(), result))
	}
	out.summary(result)
	return nil
}
