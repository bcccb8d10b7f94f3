package download

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// id3v23 builds an ID3v2.3 tag holding the given text frames, followed by a
// few bytes of fake audio.
func id3v23(frames map[string]string) []byte {
	var body bytes.Buffer
	for _, id := range []string{"TPE1", "TIT2", "TALB"} {
		v, ok := frames[id]
		if !ok {
			continue
		}
		payload := append([]byte{0x00}, []byte(v)...) // ISO-8859-1
		body.WriteString(id)
		_ = binary.Write(&body, binary.BigEndian, uint32(len(payload)))
		body.Write([]byte{0x00, 0x00})
		body.Write(payload)
	}
	body.Write(make([]byte, 16)) // padding

	size := body.Len()
	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{0x03, 0x00, 0x00})
	out.Write([]byte{
		byte(size >> 21 & 0x7f),
		byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f),
		byte(size & 0x7f),
	})
	out.Write(body.Bytes())
	out.Write([]byte{0xff, 0xfb, 0x90, 0x64, 0x00, 0x00, 0x00, 0x00})

	return out.Bytes()
}

// id3v1 builds fake audio followed by a 128 byte ID3v1 trailer.
func id3v1(artist, title string) []byte {
	field := func(s string, n int) []byte {
		b := make([]byte, n)
		copy(b, s)
		return b
	}

	var out bytes.Buffer
	out.Write(bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x64}, 64))
	out.WriteString("TAG")
	out.Write(field(title, 30))
	out.Write(field(artist, 30))
	out.Write(field("", 30)) // album
	out.Write(field("2021", 4))
	out.Write(field("", 30)) // comment
	out.WriteByte(0xff)      // genre

	return out.Bytes()
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		artist string
		title  string
		want   string
	}{
		{name: "both", artist: "Glass Animals", title: "Heat Waves", want: "Glass Animals - Heat Waves.mp3"},
		{name: "title only", title: "Heat Waves", want: "Heat Waves.mp3"},
		{name: "artist only", artist: "Glass Animals", want: "Glass Animals.mp3"},
		{name: "neither", want: "foo.mp3"},
		{name: "whitespace only", artist: "  ", title: "\t", want: "foo.mp3"},
		{name: "trimmed", artist: " Glass Animals ", title: "Heat Waves\n", want: "Glass Animals - Heat Waves.mp3"},
		{name: "separators", artist: "AC/DC", title: `Back\Black`, want: "AC_DC - Back_Black.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.artist, tt.title))
		})
	}
}

func TestPackageID3v2(t *testing.T) {
	tests := []struct {
		name   string
		frames map[string]string
		want   string
	}{
		{name: "both", frames: map[string]string{"TPE1": "Glass Animals", "TIT2": "Heat Waves"}, want: "Glass Animals - Heat Waves.mp3"},
		{name: "title only", frames: map[string]string{"TIT2": "Heat Waves"}, want: "Heat Waves.mp3"},
		{name: "artist only", frames: map[string]string{"TPE1": "Glass Animals"}, want: "Glass Animals.mp3"},
		{name: "neither", frames: map[string]string{"TALB": "Dreamland"}, want: "foo.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := id3v23(tt.frames)

			res := Package(data)
			require.NoError(t, res.TagErr)
			assert.Equal(t, tt.want, res.Filename)
			assert.Equal(t, "audio/mpeg", res.ContentType)
			assert.Equal(t, data, res.Body)
		})
	}
}

func TestPackageID3v1(t *testing.T) {
	data := id3v1("Glass Animals", "Heat Waves")

	res := Package(data)
	require.NoError(t, res.TagErr)
	assert.Equal(t, "Glass Animals", res.Artist)
	assert.Equal(t, "Heat Waves", res.Title)
	assert.Equal(t, "Glass Animals - Heat Waves.mp3", res.Filename)
}

func TestPackageWithoutTags(t *testing.T) {
	tests := map[string][]byte{
		"empty":     nil,
		"short":     {0xff, 0xfb},
		"raw audio": bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x64}, 256),
		"truncated": []byte("ID3\x03\x00\x00\x00\x00\x7f"),
		"html":      []byte("<html><body>not found</body></html>"),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			res := Package(data)
			assert.Error(t, res.TagErr)
			assert.Equal(t, FallbackFilename, res.Filename)
			assert.Equal(t, ContentType, res.ContentType)
			assert.Equal(t, data, res.Body)
		})
	}
}
