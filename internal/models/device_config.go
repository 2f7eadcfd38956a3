package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// A device config larger than this is treated as corrupt.
const maxDeviceConfigSize = 4096

// DeviceConfig is the single document the provisioning flow persists.
type DeviceConfig struct {
	APIKey string `json:"api_key"`
}

// DeviceConfigStore round-trips the DeviceConfig to a file on disk. A
// missing, oversized or unparseable file loads as a blank credential; the
// daemon then runs unprovisioned until a credential is saved.
type DeviceConfigStore struct {
	mu   sync.Mutex
	path string
}

func NewDeviceConfigStore(path string) *DeviceConfigStore {
	return &DeviceConfigStore{path: path}
}

// Load reads the saved config. It never fails: anything unreadable is
// reported as a zero-value config.
func (s *DeviceConfigStore) Load() DeviceConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *DeviceConfigStore) loadLocked() DeviceConfig {
	var cfg DeviceConfig

	info, err := os.Stat(s.path)
	if err != nil {
		return cfg
	}
	if info.Size() > maxDeviceConfigSize {
		return cfg
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DeviceConfig{}
	}
	return cfg
}

// Save writes the config atomically via a temp file rename.
func (s *DeviceConfigStore) Save(cfg DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal device config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write device config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace device config: %w", err)
	}
	return nil
}

// APIKey returns the saved credential, trimmed. Satisfies the traffic
// client's key source so a credential saved mid-run takes effect on the next
// poll.
func (s *DeviceConfigStore) APIKey() string {
	return strings.TrimSpace(s.Load().APIKey)
}
