// Package audio holds the PCM plumbing between the browser terminal and the
// speech provider: 16-bit little-endian samples, mono downmix, rate
// conversion, and the tagged binary frames carried over the websocket.
package audio

import (
	"encoding/binary"
	"fmt"
)

// Binary frame tags. The first byte of every binary websocket message says
// which direction the audio flows.
const (
	// FrameMic tags microphone audio from the terminal.
	FrameMic byte = 0x01
	// FrameAssistant tags synthesized speech for playback.
	FrameAssistant byte = 0x02
)

// Stream parameters shared with the provider: 24 kHz mono PCM16 in
// 4096-sample frames.
const (
	DefaultSampleRate   = 24000
	DefaultFrameSamples = 4096
)

// BytesToSamples decodes little-endian PCM16 bytes. Odd trailing bytes are
// rejected rather than silently dropped.
func BytesToSamples(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("audio: %d bytes is not whole 16-bit samples", len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples, nil
}

// SamplesToBytes encodes samples as little-endian PCM16.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// DownmixStereo averages interleaved stereo pairs into mono. A trailing
// unpaired sample is kept as-is.
func DownmixStereo(samples []int16) []int16 {
	mono := make([]int16, 0, (len(samples)+1)/2)
	for i := 0; i+1 < len(samples); i += 2 {
		mono = append(mono, int16((int32(samples[i])+int32(samples[i+1]))/2))
	}
	if len(samples)%2 != 0 {
		mono = append(mono, samples[len(samples)-1])
	}
	return mono
}

// Resample converts between sample rates. Downsampling averages each block
// of source samples so hiss doesn't alias; upsampling repeats the nearest
// source sample. Rates must divide evenly, which covers the 48 kHz capture
// to 24 kHz provider path.
func Resample(samples []int16, fromRate, toRate int) ([]int16, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("audio: invalid rates %d -> %d", fromRate, toRate)
	}
	if fromRate == toRate {
		out := make([]int16, len(samples))
		copy(out, samples)
		return out, nil
	}

	if fromRate > toRate {
		if fromRate%toRate != 0 {
			return nil, fmt.Errorf("audio: %d does not divide into %d", toRate, fromRate)
		}
		step := fromRate / toRate
		out := make([]int16, 0, len(samples)/step)
		for i := 0; i+step <= len(samples); i += step {
			var sum int32
			for j := 0; j < step; j++ {
				sum += int32(samples[i+j])
			}
			out = append(out, int16(sum/int32(step)))
		}
		return out, nil
	}

	if toRate%fromRate != 0 {
		return nil, fmt.Errorf("audio: %d does not divide into %d", fromRate, toRate)
	}
	factor := toRate / fromRate
	out := make([]int16, 0, len(samples)*factor)
	for _, s := range samples {
		for j := 0; j < factor; j++ {
			out = append(out, s)
		}
	}
	return out, nil
}

// WrapFrame prefixes a payload with its direction tag.
func WrapFrame(tag byte, payload []byte) []byte {
	frame := make([]byte, 1+len(payload))
	frame[0] = tag
	copy(frame[1:], payload)
	return frame
}

// ParseFrame splits a binary websocket message into tag and payload.
func ParseFrame(frame []byte) (byte, []byte, error) {
	if len(frame) < 1 {
		return 0, nil, fmt.Errorf("audio: empty frame")
	}
	tag := frame[0]
	if tag != FrameMic && tag != FrameAssistant {
		return 0, nil, fmt.Errorf("audio: unknown frame tag 0x%02x", tag)
	}
	return tag, frame[1:], nil
}
