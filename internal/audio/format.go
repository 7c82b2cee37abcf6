// Package audio provides container-format detection for synthesized audio.
package audio

import "bytes"

// Format identifies an audio container by file extension.
type Format string

const (
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatUnknown Format = ""
)

// Ext returns the filename extension for the format, without the dot.
func (f Format) Ext() string { return string(f) }

// Detect sniffs the container format from the leading bytes. A RIFF header
// with a WAVE chunk is wav; an ID3 header or an MPEG frame sync is mp3.
// Anything else is FormatUnknown; callers substitute their configured
// default rather than failing.
func Detect(data []byte) Format {
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Contains(data[:12], []byte("WAVE")) {
		return FormatWAV
	}
	if bytes.HasPrefix(data, []byte("ID3")) {
		return FormatMP3
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return FormatMP3
	}
	return FormatUnknown
}
