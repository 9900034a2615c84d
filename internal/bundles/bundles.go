// Package bundles loads the example spell collections shipped with the
// server. A bundle directory holds three kinds of files: *.spell files,
// served verbatim; *.yaml manifests, rendered to collection text; and *.lua
// generator scripts, which run once at load time in a sandboxed VM and
// produce collection text.
package bundles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/spellbench/internal/scripting"
	"github.com/cory-johannsen/spellbench/internal/spell/parser"
)

// Library is an immutable, name-indexed set of loaded bundles. It is safe
// for concurrent use.
type Library struct {
	sources map[string]string
	names   []string
}

// Options bounds generator script execution.
type Options struct {
	// InstructionLimit caps Lua opcodes per generator; 0 uses the
	// scripting default.
	InstructionLimit int
	// ScriptTimeout caps wall-clock time per generator; 0 disables it.
	ScriptTimeout time.Duration
}

// Load reads every bundle in dir. Bundles whose text fails to parse are
// logged and skipped rather than failing the load; a bad example must not
// keep the server down. An empty dir yields an empty Library.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Library; error only on an unreadable
// directory.
func Load(dir string, opts Options, logger *zap.Logger) (*Library, error) {
	lib := &Library{sources: make(map[string]string)}
	if dir == "" {
		return lib, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("bundles: reading %q: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		path := filepath.Join(dir, e.Name())

		var src string
		switch filepath.Ext(e.Name()) {
		case ".spell":
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("skipping unreadable bundle", zap.String("path", path), zap.Error(err))
				continue
			}
			src = string(data)
		case ".lua":
			src, err = scripting.GenerateSource(path, opts.InstructionLimit, opts.ScriptTimeout)
			if err != nil {
				logger.Warn("skipping failed generator", zap.String("path", path), zap.Error(err))
				continue
			}
		case ".yaml", ".yml":
			src, err = loadManifest(path)
			if err != nil {
				logger.Warn("skipping bad manifest", zap.String("path", path), zap.Error(err))
				continue
			}
		default:
			continue
		}

		if _, dup := lib.sources[name]; dup {
			logger.Warn("skipping duplicate bundle name", zap.String("name", name), zap.String("path", path))
			continue
		}
		if _, errs := parser.Parse(src); len(errs) > 0 {
			logger.Warn("skipping unparseable bundle",
				zap.String("name", name),
				zap.String("path", path),
				zap.String("error", errs[0].Error()),
			)
			continue
		}

		lib.sources[name] = src
		lib.names = append(lib.names, name)
	}

	sort.Strings(lib.names)
	logger.Info("bundles loaded", zap.Int("count", len(lib.names)))
	return lib, nil
}

// Names returns all bundle names in lexicographic order.
func (l *Library) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Source returns the collection text for name.
func (l *Library) Source(name string) (string, bool) {
	src, ok := l.sources[name]
	return src, ok
}
