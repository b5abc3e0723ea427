package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportFormat is the JSON structure for cache export/import, used to
// migrate a warm cache between devices or back it up.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []Entry           `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// exportVersion identifies the export file layout.
const exportVersion = "1.0"

// Export writes every valid resident entry to w in JSON format.
// Expired entries are excluded; importing them would be wasted bytes.
func Export(store *MemoryStore, retention time.Duration, w io.Writer, metadata map[string]string) error {
	if retention <= 0 {
		retention = DefaultRetention
	}
	all := store.Entries()
	valid := make([]Entry, 0, len(all))
	for _, e := range all {
		if !e.Expired(retention) {
			valid = append(valid, e)
		}
	}

	export := ExportFormat{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    valid,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the cache to a file.
// The path is provided by the caller and is intentionally user-controlled.
func ExportToFile(store *MemoryStore, retention time.Duration, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return Export(store, retention, f, metadata)
}

// ImportResult contains statistics about an import operation. Entries
// holds the records actually loaded, so the caller can write them
// through to its persistent tier.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Entries  []Entry
	Imported int
	Skipped  int
}

// Import reads an export file from r and loads its entries into the
// store, skipping entries that have expired since export.
func Import(store *MemoryStore, retention time.Duration, r io.Reader) (*ImportResult, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}
	for _, entry := range export.Entries {
		if entry.Key == "" || entry.Expired(retention) {
			result.Skipped++
			continue
		}
		store.Put(entry)
		result.Entries = append(result.Entries, entry)
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports cache entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func ImportFromFile(store *MemoryStore, retention time.Duration, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Import(store, retention, f)
}
