package proxy

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// relay copies src to w in chunks of at most chunkSize bytes, flushing after
// each one so audio reaches the client as it arrives. It returns when src is
// exhausted, a write fails or ctx is done.
func relay(ctx context.Context, w http.ResponseWriter, src io.Reader, chunkSize int, sent prometheus.Counter) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, chunkSize)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return total, errors.Wrap(werr, "write to client")
			}
			total += int64(n)
			if sent != nil {
				sent.Add(float64(n))
			}
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return total, errors.Wrap(ferr, "flush to client")
			}
		}

		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, errors.Wrap(err, "read from backend")
		}
	}
}
