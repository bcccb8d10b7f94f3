package shoutcast

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultDialTimeout   = 5 * time.Second
	defaultHeaderTimeout = 10 * time.Second
	defaultUserAgent     = "radioproxy"
)

// MetadataCallbackFunc is the type of the function called when the stream metadata changes
type MetadataCallbackFunc func(m *Metadata)

// StatusError is returned by Open when the server answers with a status other
// than 200 OK.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, http.StatusText(e.Code))
}

// Stream represents an open shoutcast stream.
type Stream struct {
	// The name of the server
	Name string

	// What category the server falls under
	Genre string

	// The description of the stream
	Description string

	// Homepage of the server
	URL string

	// Bitrate of the server, as announced in icy-br. Zero when unknown.
	Bitrate int

	// Optional function to be executed when stream metadata changes
	MetadataCallbackFunc MetadataCallbackFunc

	// Amount of bytes to read before expecting a metadata block. Zero when
	// the server does not interleave metadata.
	metaint int

	// Stream metadata
	metadata *Metadata

	// The number of bytes read since last metadata block
	pos int

	// The underlying data stream
	rc io.ReadCloser
}

// Client opens streams. The zero value is not usable, use NewClient.
type Client struct {
	http      *http.Client
	userAgent string
	metadata  bool
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMetadata asks the server to interleave ICY metadata, which Stream
// strips and reports through MetadataCallbackFunc.
func WithMetadata(enabled bool) Option {
	return func(c *Client) { c.metadata = enabled }
}

// WithTimeouts overrides the dial and response header timeouts.
func WithTimeouts(dial, header time.Duration) Option {
	return func(c *Client) {
		c.http = newHTTPClient(dial, header)
	}
}

// NewClient returns a Client with connection timeouts but no timeout on the
// stream body.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      newHTTPClient(defaultDialTimeout, defaultHeaderTimeout),
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func newHTTPClient(dial, header time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: dial}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: header,
		DisableCompression:    true,
	}

	// No timeout on the client - we want to stream indefinitely
	return &http.Client{Transport: transport}
}

// Open establishes a connection to a remote server. The connection lives until
// the Stream is closed or ctx is cancelled.
func (c *Client) Open(ctx context.Context, url string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "*/*")
	req.Header.Set("user-agent", c.userAgent)
	if c.metadata {
		req.Header.Set("icy-metadata", "1")
	} else {
		req.Header.Set("icy-metadata", "0")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var bitrate int
	if rawBitrate := resp.Header.Get("icy-br"); rawBitrate != "" {
		bitrate, err = strconv.Atoi(rawBitrate)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("cannot parse bitrate: %v", err)
		}
	}

	var metaint int
	if rawMetaint := resp.Header.Get("icy-metaint"); rawMetaint != "" {
		metaint, err = strconv.Atoi(rawMetaint)
		if err != nil || metaint < 0 {
			resp.Body.Close()
			return nil, fmt.Errorf("cannot parse metaint %q", rawMetaint)
		}
	}

	s := &Stream{
		Name:        resp.Header.Get("icy-name"),
		Genre:       resp.Header.Get("icy-genre"),
		Description: resp.Header.Get("icy-description"),
		URL:         resp.Header.Get("icy-url"),
		Bitrate:     bitrate,
		metaint:     metaint,
		rc:          resp.Body,
	}

	return s, nil
}

// Read implements the standard Read interface. Only audio bytes are returned.
func (s *Stream) Read(buf []byte) (int, error) {
	if s.metaint == 0 {
		return s.rc.Read(buf)
	}

	if s.pos == s.metaint {
		if err := s.readMetadata(); err != nil {
			return 0, err
		}
		s.pos = 0
	}

	if left := s.metaint - s.pos; len(buf) > left {
		buf = buf[:left]
	}

	n, err := s.rc.Read(buf)
	s.pos += n

	return n, err
}

// readMetadata consumes one metadata block: a length byte counting 16 byte
// units, followed by that many bytes.
func (s *Stream) readMetadata() error {
	var lenByte [1]byte
	if _, err := io.ReadFull(s.rc, lenByte[:]); err != nil {
		return err
	}

	size := int(lenByte[0]) * 16
	if size == 0 {
		return nil
	}

	block := make([]byte, size)
	if _, err := io.ReadFull(s.rc, block); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	if m := NewMetadata(block); !m.Equals(s.metadata) {
		s.metadata = m
		if s.MetadataCallbackFunc != nil {
			s.MetadataCallbackFunc(m)
		}
	}

	return nil
}

// Close closes the stream
func (s *Stream) Close() error {
	return s.rc.Close()
}

// CloseIdleConnections closes connections left idle by closed streams.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
