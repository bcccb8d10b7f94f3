package proxy

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/zachfi/radioproxy/pkg/download"
	"github.com/zachfi/radioproxy/pkg/nowplaying"
	"github.com/zachfi/radioproxy/pkg/shoutcast"
	"github.com/zachfi/radioproxy/pkg/station"
)

const (
	varStation = "station"
	varArtID   = "artId"
)

var icyHeaders = []string{"icy-name", "icy-genre", "icy-description", "icy-url", "icy-br"}

// RegisterRoutes mounts the station endpoints on r. One route set serves every
// station in the registry.
func (p *Proxy) RegisterRoutes(r *mux.Router) {
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/stations", p.handleStations).Methods(http.MethodGet)
	v1.HandleFunc("/{station}/stream", p.handleStream).Methods(http.MethodGet)
	v1.HandleFunc("/{station}/meta", p.handleMeta).Methods(http.MethodGet)
	v1.HandleFunc("/{station}/download/{artId}", p.handleDownload).Methods(http.MethodGet)
}

func (p *Proxy) handleStations(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p.registry.Keys())
}

func (p *Proxy) handleStream(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)[varStation]

	u, err := p.registry.StreamURL(key)
	if err != nil {
		p.writeError(w, key, err)
		return
	}

	stream, err := p.backend.OpenStream(r.Context(), u)
	if err != nil {
		p.writeError(w, key, err)
		return
	}
	defer stream.Close()

	stream.MetadataCallbackFunc = func(m *shoutcast.Metadata) {
		p.logger.Debug("now playing", "station", key, "title", m.StreamTitle)
	}

	h := w.Header()
	h.Set("Content-Type", download.ContentType)
	h.Set("Cache-Control", "no-store")
	if p.cfg.ForwardICY {
		setICYHeaders(h, stream)
	}
	w.WriteHeader(http.StatusOK)

	gauge := metricActiveStreams.WithLabelValues(key)
	gauge.Inc()
	defer gauge.Dec()

	p.logger.Debug("stream opened", "station", key, "backend", u)

	n, err := relay(r.Context(), w, stream, p.cfg.ChunkSize, metricStreamBytes.WithLabelValues(key))
	if err != nil && r.Context().Err() == nil {
		p.logger.Warn("stream interrupted", "station", key, "relayed", humanize.IBytes(uint64(n)), "err", err)
		return
	}

	p.logger.Debug("stream closed", "station", key, "relayed", humanize.IBytes(uint64(n)))
}

func (p *Proxy) handleMeta(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)[varStation]

	u, err := p.registry.MetaURL(key)
	if err != nil {
		p.writeError(w, key, err)
		return
	}

	body, err := p.backend.Fetch(r.Context(), endpointMeta, u)
	if err != nil {
		p.writeError(w, key, err)
		return
	}

	m, err := nowplaying.Translate(body)
	if err != nil {
		p.writeError(w, key, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(m)
}

func (p *Proxy) handleDownload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key, artID := vars[varStation], vars[varArtID]

	u, err := p.registry.DownloadURL(key, artID)
	if err != nil {
		p.writeError(w, key, err)
		return
	}

	body, err := p.backend.Fetch(r.Context(), endpointDownload, u)
	if err != nil {
		p.writeError(w, key, err)
		return
	}

	res := download.Package(body)
	if res.TagErr != nil {
		p.logger.Debug("no usable tags, using fallback filename", "station", key, "art_id", artID, "err", res.TagErr)
	}

	h := w.Header()
	h.Set("Content-Type", res.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(res.Body); err != nil {
		p.logger.Debug("download interrupted", "station", key, "art_id", artID, "err", err)
		return
	}

	p.logger.Debug("download served", "station", key, "art_id", artID, "filename", res.Filename, "size", humanize.IBytes(uint64(len(res.Body))))
}

// writeError maps err to a status code and writes a plain text response.
func (p *Proxy) writeError(w http.ResponseWriter, key string, err error) {
	code := statusFor(err)

	if code >= http.StatusInternalServerError {
		p.logger.Warn("backend request failed", "station", key, "status", code, "err", err)
	} else {
		p.logger.Debug("request rejected", "station", key, "status", code, "err", err)
	}

	http.Error(w, http.StatusText(code), code)
}

func statusFor(err error) int {
	var se *StatusError

	switch {
	case errors.Is(err, station.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &se):
		if se.Code == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, ErrBackendUnreachable), errors.Is(err, nowplaying.ErrMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func setICYHeaders(h http.Header, s *shoutcast.Stream) {
	values := map[string]string{
		"icy-name":        s.Name,
		"icy-genre":       s.Genre,
		"icy-description": s.Description,
		"icy-url":         s.URL,
	}
	if s.Bitrate > 0 {
		values["icy-br"] = strconv.Itoa(s.Bitrate)
	}

	for _, k := range icyHeaders {
		if v := values[k]; v != "" {
			h.Set(k, v)
		}
	}
}
