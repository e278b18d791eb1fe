package persistence

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/probably-a-wizard/internal/economy"
)

// Save keys. Bumping the version orphans older saves: the legacy key is
// detected and deleted, never interpreted.
const (
	SaveKey       = "probably-a-wizard-save-v5"
	LegacySaveKey = "probably-a-wizard-save-v4"
)

const schemaURL = "https://probably-a-wizard.local/schemas/snapshot.schema.json"

//go:embed snapshot.schema.json
var snapshotSchema []byte

// ErrInvalidSave is returned by Decode for blobs that fail the schema.
var ErrInvalidSave = errors.New("invalid save")

// Saves reads and writes the versioned game snapshot.
type Saves struct {
	store  Store
	schema *jsonschema.Schema
}

// NewSaves wraps store.
func NewSaves(store Store) (*Saves, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(snapshotSchema)); err != nil {
		return nil, fmt.Errorf("load snapshot schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	return &Saves{store: store, schema: schema}, nil
}

// Decode validates and parses a save blob.
func (s *Saves) Decode(blob []byte) (economy.Snapshot, error) {
	var snap economy.Snapshot
	var doc any
	if err := json.Unmarshal(blob, &doc); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if err := json.Unmarshal(blob, &snap); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	return snap, nil
}

// Load returns the current save. A missing, unreadable or invalid save is
// reported as absent; the cause is logged. Only when there is no current
// save is a leftover legacy save looked for and deleted.
func (s *Saves) Load(ctx context.Context) (economy.Snapshot, bool) {
	blob, err := s.store.Load(ctx, SaveKey)
	if errors.Is(err, ErrNotFound) {
		s.discardLegacy(ctx)
		return economy.Snapshot{}, false
	}
	if err != nil {
		slog.Warn("load save failed", "key", SaveKey, "error", err)
		return economy.Snapshot{}, false
	}
	snap, err := s.Decode(blob)
	if err != nil {
		slog.Warn("ignoring unreadable save", "key", SaveKey, "error", err)
		return economy.Snapshot{}, false
	}
	return snap, true
}

func (s *Saves) discardLegacy(ctx context.Context) {
	if _, err := s.store.Load(ctx, LegacySaveKey); err != nil {
		return
	}
	slog.Info("discarding save from an older version", "key", LegacySaveKey)
	if err := s.store.Delete(ctx, LegacySaveKey); err != nil {
		slog.Warn("delete legacy save failed", "key", LegacySaveKey, "error", err)
	}
}

// Save writes snap under the current key.
func (s *Saves) Save(ctx context.Context, snap economy.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.store.Save(ctx, SaveKey, blob); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Clear deletes the current and legacy saves.
func (s *Saves) Clear(ctx context.Context) error {
	return errors.Join(
		s.store.Delete(ctx, SaveKey),
		s.store.Delete(ctx, LegacySaveKey),
	)
}
