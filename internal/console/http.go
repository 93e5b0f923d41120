package console

import (
	"net/http"
	"time"
)

// newHTTPClient builds the client shared by all commands. A zero timeout
// means unlimited, which is what uploads and downloads of large files
// need; per-call deadlines come from command contexts instead.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
