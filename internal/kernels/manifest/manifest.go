// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"
)

// ErrCorrupt indicates a manifest that exists but cannot be trusted.
var ErrCorrupt = errors.New("manifest is corrupted")

// Path returns the manifest location for a build directory.
func Path(buildDir string) string {
	return filepath.Join(buildDir, FileName)
}

// New returns an empty manifest for the given platform and toolkit release.
func New(platform, toolkit string) *Manifest {
	return &Manifest{
		Version:  CurrentVersion,
		Platform: platform,
		Toolkit:  toolkit,
		Entries:  make(map[string]Entry),
	}
}

// Lookup returns the entry recorded for a module.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	e, ok := m.Entries[name]
	return e, ok
}

// Put records or replaces the entry for a module.
func (m *Manifest) Put(name string, e Entry) {
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	m.Entries[name] = e
}

// Delete forgets a module. It reports whether an entry was removed.
func (m *Manifest) Delete(name string) bool {
	if _, ok := m.Entries[name]; !ok {
		return false
	}
	delete(m.Entries, name)
	return true
}

// Names returns the recorded module names in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Entries))
	for name := range m.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save atomically writes the manifest with a fresh checksum.
func (m *Manifest) Save(path string) error {
	m.Version = CurrentVersion

	checksum, err := calculateChecksum(m)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	m.Checksum = checksum

	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create manifest directory: %w", mkdirErr)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// Load reads and validates a manifest. A missing file yields an error
// matching fs.ErrNotExist; a file that fails JSON, version or checksum
// validation yields an error matching ErrCorrupt.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if unmarshalErr := json.Unmarshal(data, &m); unmarshalErr != nil {
		return nil, fmt.Errorf("%w (invalid JSON): %v", ErrCorrupt, unmarshalErr)
	}

	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: version (%d) is incompatible with current version (%d)",
			ErrCorrupt, m.Version, CurrentVersion)
	}

	savedChecksum := m.Checksum
	calculatedChecksum, err := calculateChecksum(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum for validation: %w", err)
	}
	if savedChecksum != calculatedChecksum {
		return nil, fmt.Errorf("%w (checksum mismatch)", ErrCorrupt)
	}

	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return &m, nil
}

// calculateChecksum computes the SHA256 hash of the manifest content.
// The checksum field itself is excluded from the calculation.
func calculateChecksum(m *Manifest) (string, error) {
	c := *m
	c.Checksum = ""

	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
