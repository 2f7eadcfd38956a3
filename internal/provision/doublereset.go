package provision

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DetectDoubleReset reports whether the process was restarted within the
// double-reset window, the signal that forces the device back into setup
// mode. It always rewrites the marker with the current start time; call
// ClearMarker once the window has passed without a second reset.
func DetectDoubleReset(path string, window time.Duration, now time.Time) (bool, error) {
	doubled := false

	if data, err := os.ReadFile(path); err == nil {
		if prev, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); perr == nil {
			last := time.Unix(prev, 0)
			if now.Sub(last) >= 0 && now.Sub(last) < window {
				doubled = true
			}
		}
	}

	err := os.WriteFile(path, []byte(strconv.FormatInt(now.Unix(), 10)), 0o600)
	return doubled, err
}

// ClearMarker removes the reset marker. A missing marker is not an error.
func ClearMarker(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
