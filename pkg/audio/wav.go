// Package audio handles the WAV container work around raw PCM speech audio:
// wrapping synthesized PCM into a playable WAV file, parsing WAV files back
// into PCM, and encoding audio as data URIs for direct playback in a browser
// audio element.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// Format describes raw PCM audio.
type Format struct {
	// SampleRate in Hz, e.g. 24000.
	SampleRate int

	// Channels is the channel count, 1 for mono.
	Channels int

	// BitDepth is bits per sample, 16 for the speech providers used here.
	BitDepth int
}

// DefaultSpeechFormat is the format the speech synthesis providers emit:
// 24kHz mono 16-bit little-endian PCM.
var DefaultSpeechFormat = Format{SampleRate: 24000, Channels: 1, BitDepth: 16}

// EncodeWAV wraps raw little-endian PCM samples in a minimal RIFF/WAVE
// container with a single fmt and data chunk.
func EncodeWAV(pcm []byte, f Format) []byte {
	byteRate := f.SampleRate * f.Channels * f.BitDepth / 8
	blockAlign := f.Channels * f.BitDepth / 8

	out := make([]byte, 0, 44+len(pcm))
	le := binary.LittleEndian

	u32 := func(v uint32) []byte {
		var b [4]byte
		le.PutUint32(b[:], v)
		return b[:]
	}
	u16 := func(v uint16) []byte {
		var b [2]byte
		le.PutUint16(b[:], v)
		return b[:]
	}

	out = append(out, "RIFF"...)
	out = append(out, u32(uint32(36+len(pcm)))...)
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = append(out, u32(16)...)
	out = append(out, u16(1)...) // PCM
	out = append(out, u16(uint16(f.Channels))...)
	out = append(out, u32(uint32(f.SampleRate))...)
	out = append(out, u32(uint32(byteRate))...)
	out = append(out, u16(uint16(blockAlign))...)
	out = append(out, u16(uint16(f.BitDepth))...)

	out = append(out, "data"...)
	out = append(out, u32(uint32(len(pcm)))...)
	out = append(out, pcm...)
	return out
}

// ParseWAV extracts the raw PCM payload and format from a RIFF/WAVE file. It
// walks the chunk list, so files with extra chunks (LIST, fact) parse fine.
func ParseWAV(data []byte) ([]byte, Format, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, Format{}, fmt.Errorf("audio: not a RIFF/WAVE file")
	}
	le := binary.LittleEndian

	var f Format
	var pcm []byte
	haveFmt := false

	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(le.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			return nil, Format{}, fmt.Errorf("audio: truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, Format{}, fmt.Errorf("audio: fmt chunk too short (%d bytes)", size)
			}
			if codec := le.Uint16(data[body : body+2]); codec != 1 {
				return nil, Format{}, fmt.Errorf("audio: unsupported codec %d, want PCM", codec)
			}
			f.Channels = int(le.Uint16(data[body+2 : body+4]))
			f.SampleRate = int(le.Uint32(data[body+4 : body+8]))
			f.BitDepth = int(le.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word aligned.
		pos = body + size + size%2
	}

	if !haveFmt {
		return nil, Format{}, fmt.Errorf("audio: missing fmt chunk")
	}
	if pcm == nil {
		return nil, Format{}, fmt.Errorf("audio: missing data chunk")
	}
	return pcm, f, nil
}

// DataURI encodes payload as a base64 data URI with the given MIME type,
// e.g. "data:audio/wav;base64,UklGR…".
func DataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// ParseDataURI decodes a base64 data URI into its MIME type and payload.
func ParseDataURI(uri string) (mime string, payload []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("audio: missing data: scheme")
	}
	mime, b64, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("audio: not a base64 data URI")
	}
	payload, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("audio: decode payload: %w", err)
	}
	return mime, payload, nil
}
