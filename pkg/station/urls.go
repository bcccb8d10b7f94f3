package station

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// StreamURL returns the backend audio stream URL of a station.
func (r *Registry) StreamURL(key string) (string, error) {
	e, err := r.Resolve(key)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s/radio.mp3", r.hostPort(e.Stream.Port)), nil
}

// MetaURL returns the backend now-playing API URL of a station.
func (r *Registry) MetaURL(key string) (string, error) {
	if _, err := r.Resolve(key); err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s/api/nowplaying/%s", r.hostPort(r.port), url.PathEscape(key)), nil
}

// DownloadURL returns the backend on-demand download URL of the track
// identified by artID on a station.
func (r *Registry) DownloadURL(key, artID string) (string, error) {
	if _, err := r.Resolve(key); err != nil {
		return "", err
	}
	if artID == "" {
		return "", errors.New("art id must not be empty")
	}

	return fmt.Sprintf("http://%s/api/station/%s/ondemand/download/%s",
		r.hostPort(r.port), url.PathEscape(key), url.PathEscape(artID)), nil
}

func (r *Registry) hostPort(port int) string {
	return net.JoinHostPort(r.host, strconv.Itoa(port))
}
