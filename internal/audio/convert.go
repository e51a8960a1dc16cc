package audio

import (
	"encoding/binary"
	"math"
)

func Resample(input []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return input
	}

	ratio := float64(toRate) / float64(fromRate)
	outputLen := int(math.Ceil(float64(len(input)) * ratio))
	output := make([]float32, outputLen)

	resampleCore(output, input, ratio)
	return output
}

func resampleCore(output, input []float32, ratio float64) {
	for i := 0; i < len(output); i++ {
		srcPos := float64(i) / ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		if srcIdx+1 < len(input) {
			output[i] = input[srcIdx]*(1-frac) + input[srcIdx+1]*frac
		} else if srcIdx < len(input) {
			output[i] = input[srcIdx]
		}
	}
}

func ResampleInt16(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 {
		return samples
	}

	floats := Int16ToFloat32(samples)
	resampled := Resample(floats, fromRate, toRate)
	return FloatToPCM16(resampled)
}

// PCMBytesToInt16 decodes little-endian signed 16-bit samples. A trailing
// odd byte is dropped.
func PCMBytesToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// Float32BytesToFloat32 decodes little-endian IEEE 754 samples.
func Float32BytesToFloat32(pcm []byte) []float32 {
	samples := make([]float32, len(pcm)/4)
	for i := 0; i < len(samples); i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(pcm[i*4:]))
	}
	return samples
}

func Int16ToFloat32(samples []int16) []float32 {
	result := make([]float32, len(samples))
	for i, s := range samples {
		result[i] = float32(s) / 32768.0
	}
	return result
}

// FloatToPCM16 maps each sample s to round(s*32768), saturating at the int16
// range. 1.0 therefore becomes 32767 and -1.0 becomes -32768.
func FloatToPCM16(samples []float32) []int16 {
	result := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * 32768.0)
		switch {
		case math.IsNaN(v):
			v = 0
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		result[i] = int16(v)
	}
	return result
}
