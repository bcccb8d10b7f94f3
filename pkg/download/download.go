// Package download packages on-demand track downloads: it reads the embedded
// tags of an MP3 and names the file after them.
package download

import (
	"bytes"
	"strings"

	"github.com/dhowden/tag"
)

const (
	// ContentType of every packaged download.
	ContentType = "audio/mpeg"

	// FallbackFilename is used when the track carries neither artist nor title.
	FallbackFilename = "foo.mp3"
)

// Result is a track ready to be sent as an attachment.
type Result struct {
	Body        []byte
	Filename    string
	ContentType string
	Artist      string
	Title       string

	// TagErr is set when the tags could not be read. The result is still
	// usable and carries FallbackFilename.
	TagErr error
}

// Package builds a Result from raw MP3 bytes. It never fails: unreadable
// tags fall back to the default filename.
func Package(data []byte) Result {
	res := Result{
		Body:        data,
		ContentType: ContentType,
	}

	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		res.TagErr = err
		res.Filename = FallbackFilename
		return res
	}

	res.Artist = clean(m.Artist())
	res.Title = clean(m.Title())
	res.Filename = Filename(res.Artist, res.Title)

	return res
}

// Filename derives the attachment name from a track's artist and title.
func Filename(artist, title string) string {
	artist, title = clean(artist), clean(title)

	switch {
	case artist != "" && title != "":
		return artist + " - " + title + ".mp3"
	case title != "":
		return title + ".mp3"
	case artist != "":
		return artist + ".mp3"
	default:
		return FallbackFilename
	}
}

var separators = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// clean keeps a tag value usable as a single path component.
func clean(s string) string {
	return strings.TrimSpace(separators.Replace(s))
}
