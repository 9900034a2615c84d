package host

import (
	"context"
	"time"
)

// Draft is a named, user-editable spell-collection source text.
type Draft struct {
	Name      string
	Source    string
	UpdatedAt time.Time
}

// Preset is a named parameter snapshot.
type Preset struct {
	Name      string
	Params    map[string]int
	UpdatedAt time.Time
}

// DraftStore persists drafts. Save upserts by name.
//
// Precondition for all methods: name must be non-empty where taken.
type DraftStore interface {
	Save(ctx context.Context, name, source string) error
	List(ctx context.Context) ([]Draft, error)
	Get(ctx context.Context, name string) (Draft, error)
	Delete(ctx context.Context, name string) error
}

// PresetStore persists parameter presets. Save upserts by name.
type PresetStore interface {
	Save(ctx context.Context, name string, params map[string]int) error
	List(ctx context.Context) ([]Preset, error)
	Get(ctx context.Context, name string) (Preset, error)
}

// PinStore persists the set of pinned spell names. Pins affect display order
// only; the engine never sees them.
type PinStore interface {
	Pin(ctx context.Context, spell string) error
	Unpin(ctx context.Context, spell string) error
	List(ctx context.Context) ([]string, error)
}

// SeenStore records which bundles the user has opened, for first-use
// highlighting.
type SeenStore interface {
	MarkSeen(ctx context.Context, bundle string) error
	List(ctx context.Context) ([]string, error)
}

// ParamStore remembers the most recent parameter assignment, so a client
// that reconnects without one picks up where it left off.
type ParamStore interface {
	SaveLast(ctx context.Context, params map[string]int) error
	LoadLast(ctx context.Context) (map[string]int, error)
}

// BundleLibrary serves the built-in example collections.
type BundleLibrary interface {
	// Names returns available bundle names in stable order.
	Names() []string
	// Source returns the bundle's source text.
	Source(name string) (string, bool)
}
