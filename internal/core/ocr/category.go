package ocr

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	CategoryDefault = "default" // documents, posters
	CategoryChat    = "chat"    // rendered chat transcripts
)

// Category pairs a preprocessing transform with a recognition mode
type Category struct {
	Name      string
	Transform Transform
	Mode      PageSegMode
}

// Registry maps category names to their preprocessing variant and mode.
// Unknown categories resolve to the default one.
type Registry struct {
	mu         sync.RWMutex
	categories map[string]Category
}

// NewRegistry creates a registry holding the built-in categories
func NewRegistry(targetHeight int) *Registry {
	r := &Registry{categories: make(map[string]Category)}

	r.mustRegister(Category{Name: CategoryDefault, Transform: GrayscaleOtsu(targetHeight), Mode: PSMAuto})
	r.mustRegister(Category{Name: CategoryChat, Transform: GrayscaleOtsu(targetHeight), Mode: PSMSparseText})

	return r
}

// Register adds or replaces a category
func (r *Registry) Register(c Category) error {
	name := normalizeCategory(c.Name)
	if name == "" {
		return fmt.Errorf("category name is required")
	}
	if c.Transform == nil {
		return fmt.Errorf("category %q has no transform", name)
	}
	c.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[name] = c
	return nil
}

func (r *Registry) mustRegister(c Category) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Lookup returns the category for name, falling back to the default category
func (r *Registry) Lookup(name string) Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.categories[normalizeCategory(name)]; ok {
		return c
	}
	return r.categories[CategoryDefault]
}

// Names lists registered categories
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
