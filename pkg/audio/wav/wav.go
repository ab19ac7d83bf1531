// Package wav decodes and encodes RIFF/WAVE audio for the analysis
// pipeline.
//
// Decoding accepts PCM (8/16/24/32-bit) and IEEE float (32/64-bit) data,
// downmixes multi-channel material to mono by averaging, and normalizes
// samples to [-1, 1]. Encoding always writes 16-bit PCM mono.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

var (
	// ErrNotWAV indicates the input is not a RIFF/WAVE stream.
	ErrNotWAV = errors.New("wav: not a RIFF/WAVE stream")
	// ErrUnsupportedFormat indicates a sample encoding this decoder
	// does not handle.
	ErrUnsupportedFormat = errors.New("wav: unsupported sample format")
	// ErrEmptyAudio indicates a file with no audio payload.
	ErrEmptyAudio = errors.New("wav: empty audio data")
	// ErrTooLarge indicates the file exceeds the configured size limit.
	ErrTooLarge = errors.New("wav: file exceeds size limit")
	// ErrTooLong indicates the clip exceeds the configured duration limit.
	ErrTooLong = errors.New("wav: clip exceeds duration limit")
)

// Clip is a decoded mono audio clip.
type Clip struct {
	Samples    []float64 // normalized to [-1, 1]
	SampleRate int       // Hz
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Limits bound the clips accepted by DecodeFile.
type Limits struct {
	MaxBytes    int64         // 0 disables the size check
	MaxDuration time.Duration // 0 disables the duration check
}

// DefaultLimits returns the standard intake limits: 100 MB and 10 minutes.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:    100 << 20,
		MaxDuration: 600 * time.Second,
	}
}

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// DecodeFile reads and decodes a WAV file, enforcing the given limits.
func DecodeFile(path string, limits Limits) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav: open %s: %w", path, err)
	}
	defer f.Close()

	if limits.MaxBytes > 0 {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("wav: stat %s: %w", path, err)
		}
		if info.Size() > limits.MaxBytes {
			return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), limits.MaxBytes)
		}
	}

	clip, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if limits.MaxDuration > 0 && clip.Duration() > limits.MaxDuration {
		return nil, fmt.Errorf("%w: %s (limit %s)", ErrTooLong, clip.Duration(), limits.MaxDuration)
	}
	return clip, nil
}

// Decode reads a RIFF/WAVE stream and returns a normalized mono clip.
func Decode(r io.Reader) (*Clip, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		audioFormat   uint16
		channels      uint16
		sampleRate    uint32
		bitsPerSample uint16
		data          []byte
		haveFmt       bool
	)

	// Walk the chunk list; unknown chunks are skipped. Chunk bodies are
	// padded to even length.
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("wav: read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read fmt chunk: %w", err)
			}
			if len(body) < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short (%d bytes)", len(body))
			}
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			if audioFormat == formatExtensible && len(body) >= 26 {
				// WAVE_FORMAT_EXTENSIBLE carries the real format in the
				// first two bytes of the subformat GUID.
				audioFormat = binary.LittleEndian.Uint16(body[24:26])
			}
			haveFmt = true
		case "data":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: read data chunk: %w", err)
			}
			data = body
		default:
			skip := int64(size)
			if skip%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("wav: skip %q chunk: %w", id, err)
			}
			continue
		}
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && err != io.EOF {
				return nil, fmt.Errorf("wav: skip chunk padding: %w", err)
			}
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrNotWAV)
	}
	if sampleRate == 0 {
		return nil, fmt.Errorf("wav: invalid sample rate 0")
	}
	if channels == 0 {
		return nil, fmt.Errorf("wav: invalid channel count 0")
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	samples, err := decodeSamples(data, audioFormat, bitsPerSample)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}

	if channels > 1 {
		samples = downmix(samples, int(channels))
	}
	return &Clip{Samples: samples, SampleRate: int(sampleRate)}, nil
}

// decodeSamples converts raw little-endian sample bytes into normalized
// float64 values, interleaved channels preserved.
func decodeSamples(data []byte, format, bits uint16) ([]float64, error) {
	switch {
	case format == formatPCM && bits == 16:
		n := len(data) / 2
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			s := int16(data[i*2]) | int16(data[i*2+1])<<8
			out[i] = float64(s) / 32768.0
		}
		return out, nil

	case format == formatPCM && bits == 8:
		// 8-bit WAV is unsigned with a 128 midpoint.
		out := make([]float64, len(data))
		for i, b := range data {
			out[i] = (float64(b) - 128.0) / 128.0
		}
		return out, nil

	case format == formatPCM && bits == 24:
		n := len(data) / 3
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(data[i*3+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // sign extend
			}
			out[i] = float64(v) / 8388608.0
		}
		return out, nil

	case format == formatPCM && bits == 32:
		n := len(data) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(data[i*4:]))
			out[i] = float64(v) / 2147483648.0
		}
		return out, nil

	case format == formatIEEEFloat && bits == 32:
		n := len(data) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
		return out, nil

	case format == formatIEEEFloat && bits == 64:
		n := len(data) / 8
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: format=%d bits=%d", ErrUnsupportedFormat, format, bits)
}

// downmix averages interleaved channels into mono.
func downmix(interleaved []float64, channels int) []float64 {
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// Encode writes samples as a 16-bit PCM mono WAV stream.
func Encode(w io.Writer, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}

	dataLen := len(samples) * 2
	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], 1) // mono
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(hdr[32:34], 2)
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	buf := make([]byte, dataLen)
	for i, s := range samples {
		v := s * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		sv := int16(v)
		buf[i*2] = byte(sv)
		buf[i*2+1] = byte(sv >> 8)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("wav: write samples: %w", err)
	}
	return nil
}

// EncodeFile writes samples as a 16-bit PCM mono WAV file.
func EncodeFile(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: create %s: %w", path, err)
	}
	if err := Encode(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
