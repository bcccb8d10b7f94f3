// Package nowplaying reshapes the backend now-playing payload into the
// metadata document served to clients.
package nowplaying

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is returned when a backend payload lacks the expected structure.
var ErrMalformed = errors.New("malformed now-playing payload")

// Metadata describes the track currently on air.
type Metadata struct {
	Duration  float64 `json:"duration"`
	Elapsed   float64 `json:"elapsed"`
	Remaining float64 `json:"remaining"`
	Artist    string  `json:"artist"`
	Title     string  `json:"title"`
	ID        string  `json:"id"`
	ArtID     string  `json:"art-id"`
}

// payload mirrors the subset of the backend response we read. Pointers
// distinguish absent fields from zero values.
type payload struct {
	NowPlaying *struct {
		Duration  *float64 `json:"duration"`
		Elapsed   *float64 `json:"elapsed"`
		Remaining *float64 `json:"remaining"`
		Song      *struct {
			ID     *string `json:"id"`
			Artist *string `json:"artist"`
			Title  *string `json:"title"`
			Art    *string `json:"art"`
		} `json:"song"`
	} `json:"now_playing"`
}

// Translate extracts the now-playing metadata from a backend response body.
func Translate(body []byte) (Metadata, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Metadata{}, errors.Wrapf(ErrMalformed, "decode: %v", err)
	}

	np := p.NowPlaying
	if np == nil {
		return Metadata{}, missing("now_playing")
	}
	if np.Song == nil {
		return Metadata{}, missing("now_playing.song")
	}

	switch {
	case np.Duration == nil:
		return Metadata{}, missing("now_playing.duration")
	case np.Elapsed == nil:
		return Metadata{}, missing("now_playing.elapsed")
	case np.Remaining == nil:
		return Metadata{}, missing("now_playing.remaining")
	case np.Song.ID == nil:
		return Metadata{}, missing("now_playing.song.id")
	case np.Song.Artist == nil:
		return Metadata{}, missing("now_playing.song.artist")
	case np.Song.Title == nil:
		return Metadata{}, missing("now_playing.song.title")
	case np.Song.Art == nil:
		return Metadata{}, missing("now_playing.song.art")
	}

	return Metadata{
		Duration:  *np.Duration,
		Elapsed:   *np.Elapsed,
		Remaining: *np.Remaining,
		Artist:    *np.Song.Artist,
		Title:     *np.Song.Title,
		ID:        *np.Song.ID,
		ArtID:     ArtID(*np.Song.Art),
	}, nil
}

// ArtID derives the track identifier embedded in a cover art URL: the last
// path segment up to its first hyphen. Percent-escapes are kept as sent.
//
//	http://radio/api/station/1/art/abc123-1650000000.jpg -> abc123
func ArtID(artURL string) string {
	p := artURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if i := strings.Index(p, "-"); i >= 0 {
		p = p[:i]
	}

	return p
}

func missing(field string) error {
	return errors.Wrapf(ErrMalformed, "missing %s", field)
}
