package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/eleven-am/voice-recognizer/internal/audio"
)

var (
	primary = lipgloss.Color("#00ff9f")
	dim     = lipgloss.Color("#6e7681")

	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(primary)
	partialStyle = lipgloss.NewStyle().Foreground(dim)
	timeStyle    = lipgloss.NewStyle().Foreground(dim)
	textStyle    = lipgloss.NewStyle().Bold(true)
)

type printer struct {
	mu       sync.Mutex
	w        io.Writer
	partials bool
	last     string
}

func newPrinter(w io.Writer, partials bool) *printer {
	return &printer{w: w, partials: partials}
}

// hyp prints partial hypotheses as they change.
func (p *printer) hyp(text string, score int32) {
	if !p.partials || text == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if text == p.last {
		return
	}
	p.last = text
	fmt.Fprintln(p.w, partialStyle.Render(fmt.Sprintf("  … %s (%d)", text, score)))
}

func (p *printer) segment(s audio.Segment) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = ""
	span := timeStyle.Render(fmt.Sprintf("[%s → %s]", formatOffset(s.Start), formatOffset(s.End)))
	fmt.Fprintf(p.w, "%s %s\n", span, textStyle.Render(s.Text))
}

func (p *printer) summary(r *audio.BatchTranscribeResult) {
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("final"), textStyle.Render(r.Text))
	fmt.Fprintln(p.w, partialStyle.Render(fmt.Sprintf(
		"search %s · %d Hz · %s of audio in %s",
		r.Search, r.SampleRate, r.AudioDuration.Round(time.Millisecond), r.ProcessingDuration.Round(time.Millisecond),
	)))
}

func formatOffset(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

type segmentReport struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Final bool    `json:"final"`
}

type report struct {
	File       string          `json:"file"`
	Engine     string          `json:"engine"`
	Search     string          `json:"search"`
	SampleRate int             `json:"sample_rate"`
	Duration   float64         `json:"duration"`
	Text       string          `json:"text"`
	Segments   []segmentReport `json:"segments"`
}

func newReport(file, engine string, r *audio.BatchTranscribeResult) report {
	out := report{
		File:       file,
		Engine:     engine,
		Search:     r.Search,
		SampleRate: r.SampleRate,
		Duration:   r.AudioDuration.Seconds(),
		Text:       r.Text,
		Segments:   make([]segmentReport, len(r.Segments)),
	}
	for i, s := range r.Segments {
		out.Segments[i] = segmentReport{Start: s.Start.Seconds(), End: s.End.Seconds(), Text: s.Text, Final: s.Final}
	}
	return out
}
