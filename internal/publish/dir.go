package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Dir publisher modes, selected with the `mode` option.
const (
	// ModeCopy starts each file afresh on its first record of a run.
	ModeCopy = "copy"
	// ModeAppend keeps whatever the file already holds.
	ModeAppend = "append"
)

// DirPublisher writes records as JSON lines below a root directory. The file
// is `<target>.jsonl` unless the `path` option names another one.
type DirPublisher struct {
	root string

	mu      sync.Mutex
	started map[string]bool
}

// NewDirPublisher returns a publisher writing below root.
func NewDirPublisher(root string) *DirPublisher {
	return &DirPublisher{root: root, started: make(map[string]bool)}
}

// Name implements Backend.
func (d *DirPublisher) Name() string { return "dir" }

type dirLine struct {
	Component string          `json:"component"`
	Target    string          `json:"target"`
	Channel   uint64          `json:"channel"`
	Value     json.RawMessage `json:"value"`
}

// Publish implements dataflow.Publisher.
func (d *DirPublisher) Publish(ctx context.Context, rec dataflow.Record) error {
	mode := rec.Options.String("mode", ModeCopy)
	if mode != ModeCopy && mode != ModeAppend {
		return fmt.Errorf("publish target '%s': unsupported mode '%s'", rec.Target, mode)
	}
	path, err := d.path(rec)
	if err != nil {
		return err
	}

	var buf strings.Builder
	for _, v := range rec.Values {
		raw, err := encodeValue(v)
		if err != nil {
			return fmt.Errorf("publish target '%s': %w", rec.Target, err)
		}
		line, err := json.Marshal(dirLine{Component: rec.Component, Target: rec.Target, Channel: rec.Channel, Value: raw})
		if err != nil {
			return fmt.Errorf("publish target '%s': %w", rec.Target, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if mode == ModeCopy && !d.started[path] {
		flags |= os.O_TRUNC
	}
	d.started[path] = true

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("publish target '%s': %w", rec.Target, err)
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("publish target '%s': %w", rec.Target, err)
	}
	if _, err := f.WriteString(buf.String()); err != nil {
		f.Close()
		return fmt.Errorf("publish target '%s': %w", rec.Target, err)
	}
	ctxlog.FromContext(ctx).Debug("Published values to file.", "target", rec.Target, "path", path, "values", len(rec.Values))
	return f.Close()
}

func (d *DirPublisher) path(rec dataflow.Record) (string, error) {
	name := rec.Options.String("path", rec.Target+".jsonl")
	if filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return "", fmt.Errorf("publish target '%s': path '%s' must stay inside the publish directory", rec.Target, name)
	}
	return filepath.Join(d.root, name), nil
}

// encodeValue uses cty's own JSON encoding and falls back to the plain Go
// conversion for values it cannot handle, such as channels.
func encodeValue(v cty.Value) (json.RawMessage, error) {
	if v.IsWhollyKnown() && !v.Type().HasDynamicTypes() && !containsCapsule(v.Type()) {
		raw, err := ctyjson.Marshal(v, v.Type())
		if err == nil {
			return raw, nil
		}
	}
	plain, err := ToInterface(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(plain)
}

func containsCapsule(ty cty.Type) bool {
	found := false
	switch {
	case ty.IsCapsuleType():
		found = true
	case ty.IsObjectType():
		for _, at := range ty.AttributeTypes() {
			found = found || containsCapsule(at)
		}
	case ty.IsTupleType():
		for _, et := range ty.TupleElementTypes() {
			found = found || containsCapsule(et)
		}
	case ty.IsCollectionType():
		found = containsCapsule(ty.ElementType())
	}
	return found
}
