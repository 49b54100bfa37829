// Package snapshot persists the aggregated statistics record between runs.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/profilekit/profilekit/internal/domain"
)

// Write serializes the snapshot as indented JSON at path. Any previous
// snapshot is overwritten wholesale; no history is retained.
func Write(path string, snap *domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", path, err)
	}
	return nil
}

// Read loads a previously written snapshot.
func Read(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from %s: %w", path, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot from %s: %w", path, err)
	}
	return &snap, nil
}
