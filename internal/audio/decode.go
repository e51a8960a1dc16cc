package audio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mewkiz/flac"
)

type Format string

const (
	FormatFLAC  Format = "flac"
	FormatS16LE Format = "s16le"
	FormatF32LE Format = "f32le"
)

var flacMagic = []byte("fLaC")

// PCM is mono 16-bit audio.
type PCM struct {
	Samples    []int16
	SampleRate int
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flac":
		return FormatFLAC, nil
	case "s16", "s16le", "pcm", "pcm16", "raw":
		return FormatS16LE, nil
	case "f32", "f32le", "float", "float32":
		return FormatF32LE, nil
	}
	return "", fmt.Errorf("unsupported audio format %q", s)
}

// Decode reads a whole stream. rate is the sample rate of raw input and is
// ignored for FLAC, which carries its own. An empty format is sniffed from
// the stream header, falling back to s16le.
func Decode(r io.Reader, format Format, rate int) (*PCM, error) {
	br := bufio.NewReader(r)
	if format == "" {
		head, _ := br.Peek(len(flacMagic))
		format = FormatS16LE
		if bytes.Equal(head, flacMagic) {
			format = FormatFLAC
		}
	}

	switch format {
	case FormatFLAC:
		return DecodeFLAC(br)
	case FormatS16LE, FormatF32LE:
		if rate <= 0 {
			return nil, errors.New("raw audio needs a sample rate")
		}
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		pcm := &PCM{SampleRate: rate}
		if format == FormatS16LE {
			pcm.Samples = PCMBytesToInt16(data)
		} else {
			pcm.Samples = FloatToPCM16(Float32BytesToFloat32(data))
		}
		return pcm, nil
	}
	return nil, fmt.Errorf("unsupported audio format %q", format)
}

// DecodeFLAC decodes a FLAC stream, averaging channels down to mono and
// rescaling samples to 16 bits.
func DecodeFLAC(r io.Reader) (*PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("open flac stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info.BitsPerSample == 0 || info.NChannels == 0 {
		return nil, errors.New("flac stream info is incomplete")
	}

	pcm := &PCM{
		SampleRate: int(info.SampleRate),
		Samples:    make([]int16, 0, info.NSamples),
	}
	shift := int(info.BitsPerSample) - 16

	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse flac frame: %w", err)
		}
		if len(f.Subframes) == 0 {
			continue
		}

		n := len(f.Subframes[0].Samples)
		channels := int64(len(f.Subframes))
		for i := 0; i < n; i++ {
			var sum int64
			for _, sub := range f.Subframes {
				sum += int64(sub.Samples[i])
			}
			v := sum / channels
			if shift > 0 {
				v >>= shift
			} else if shift < 0 {
				v <<= -shift
			}
			pcm.Samples = append(pcm.Samples, int16(v))
		}
	}
	return pcm, nil
}

// Chunks splits samples into consecutive slices of at most size samples.
// The slices share the input's backing array.
func Chunks(samples []int16, size int) [][]int16 {
	if size <= 0 {
		size = len(samples)
	}
	var out [][]int16
	for len(samples) > 0 {
		n := min(size, len(samples))
		out = append(out, samples[:n])
		samples = samples[n:]
	}
	return out
}
