package station

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamURL(t *testing.T) {
	r := testRegistry(t)

	u, err := r.StreamURL("pranks")
	require.NoError(t, err)
	assert.Equal(t, "http://radio.local:8000/radio.mp3", u)

	u, err = r.StreamURL("314")
	require.NoError(t, err)
	assert.Equal(t, "http://radio.local:8020/radio.mp3", u)
}

func TestMetaURL(t *testing.T) {
	r := testRegistry(t)

	u, err := r.MetaURL("2ch")
	require.NoError(t, err)
	assert.Equal(t, "http://radio.local:8080/api/nowplaying/2ch", u)
}

func TestDownloadURL(t *testing.T) {
	r := testRegistry(t)

	u, err := r.DownloadURL("pranks", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "http://radio.local:8080/api/station/pranks/ondemand/download/abc123", u)

	u, err = r.DownloadURL("pranks", "a b/c")
	require.NoError(t, err)
	assert.Equal(t, "http://radio.local:8080/api/station/pranks/ondemand/download/a%20b%2Fc", u)

	_, err = r.DownloadURL("pranks", "")
	assert.Error(t, err)
}

func TestURLsAreDeterministic(t *testing.T) {
	r := testRegistry(t)

	for i := 0; i < 3; i++ {
		a, _ := r.MetaURL("pranks")
		b, _ := r.MetaURL("pranks")
		assert.Equal(t, a, b)

		a, _ = r.DownloadURL("2ch", "xyz")
		b, _ = r.DownloadURL("2ch", "xyz")
		assert.Equal(t, a, b)
	}
}

func TestURLsUnknownStation(t *testing.T) {
	r := testRegistry(t)

	_, err := r.StreamURL("books")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = r.MetaURL("books")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = r.DownloadURL("books", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIPv6Host(t *testing.T) {
	r, err := NewRegistry("::1", 80, map[string]Entry{"pranks": {Stream: Stream{Port: 8000}}})
	require.NoError(t, err)

	u, err := r.StreamURL("pranks")
	require.NoError(t, err)
	assert.Equal(t, "http://[::1]:8000/radio.mp3", u)
}
