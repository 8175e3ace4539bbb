package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// DefaultSchema is the activity type whose schema applies when a type has
// none of its own.
const DefaultSchema = "default"

// Loader compiles metadata schemas on first use and caches them per
// activity type.
type Loader struct {
	repo  repository.SchemaRepo
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

func NewLoader(r repository.SchemaRepo) *Loader {
	return &Loader{
		repo:  r,
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Schema returns the compiled schema for activityType, falling back to the
// default schema. It returns nil when neither exists.
func (l *Loader) Schema(ctx context.Context, activityType string) (*jsonschema.Schema, error) {
	for _, key := range []string{activityType, DefaultSchema} {
		s, err := l.get(ctx, key)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s, nil
		}
	}
	return nil, nil
}

func (l *Loader) get(ctx context.Context, key string) (*jsonschema.Schema, error) {
	l.mu.RLock()
	s, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return s, nil
	}

	row, err := l.repo.GetSchema(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", key, err)
	}
	if row != nil {
		if s, err = Compile([]byte(row.SchemaJSON)); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", key, err)
		}
	}

	// misses are cached too, Invalidate clears them
	l.mu.Lock()
	l.cache[key] = s
	l.mu.Unlock()
	return s, nil
}

// Invalidate drops every cached schema.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cache = make(map[string]*jsonschema.Schema)
	l.mu.Unlock()
}

// Compile parses raw into a schema.
func Compile(raw []byte) (*jsonschema.Schema, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("schema is not valid JSON")
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		return nil, err
	}
	return rs, nil
}
