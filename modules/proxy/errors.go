package proxy

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrBackendUnreachable wraps transport failures talking to the backend.
var ErrBackendUnreachable = errors.New("backend unreachable")

// StatusError is returned when the backend answers with a non-success status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d %s for %s", e.Code, http.StatusText(e.Code), e.URL)
}
