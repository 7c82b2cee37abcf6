package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	wav := append([]byte("RIFF"), []byte{0x24, 0x08, 0x00, 0x00}...)
	wav = append(wav, []byte("WAVE")...)
	assert.Equal(t, FormatWAV, Detect(wav))

	assert.Equal(t, FormatMP3, Detect([]byte("ID3\x04\x00\x00\x00\x00\x00\x00")))
	assert.Equal(t, FormatMP3, Detect([]byte{0xFF, 0xFB, 0x90, 0x00}))
	assert.Equal(t, FormatMP3, Detect([]byte{0xFF, 0xF3, 0x44, 0x00}))

	assert.Equal(t, FormatUnknown, Detect([]byte("not audio at all")))
	assert.Equal(t, FormatUnknown, Detect(nil))
	// RIFF alone is not enough without the WAVE chunk marker.
	assert.Equal(t, FormatUnknown, Detect([]byte("RIFF....AVI LIST")))
}

func TestExt(t *testing.T) {
	assert.Equal(t, "mp3", FormatMP3.Ext())
	assert.Equal(t, "wav", FormatWAV.Ext())
}
