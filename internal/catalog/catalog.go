// Package catalog loads the services offered on the site.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/domain"
)

//go:embed services.yaml
var defaultServices []byte

// ErrInvalidCatalog wraps every validation failure from New and Normalize.
var ErrInvalidCatalog = errors.New("catalog: invalid")

// DefaultImage is shown for services stored without an image.
const DefaultImage = "placeholder.png"

type document struct {
	Services []domain.Service `yaml:"services"`
}

// Catalog is an immutable, ordered set of services keyed by slug.
type Catalog struct {
	services []domain.Service
	bySlug   map[string]int
}

// Default returns the built-in seven-service catalog.
func Default() *Catalog {
	c, err := Parse(defaultServices)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded seed is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and validates it with New.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Services)
}

// New builds a catalog from services in order. Slugs must be unique.
func New(services []domain.Service) (*Catalog, error) {
	c := &Catalog{bySlug: make(map[string]int, len(services))}
	for i, svc := range services {
		svc, err := Normalize(svc)
		if err != nil {
			return nil, fmt.Errorf("%w (entry %d)", err, i)
		}
		if _, dup := c.bySlug[svc.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidCatalog, svc.Slug)
		}
		c.bySlug[svc.Slug] = len(c.services)
		c.services = append(c.services, svc)
	}
	return c, nil
}

// Normalize trims svc and checks it can be sold: slug and name are required,
// the price must be one the cart accepts. A blank image becomes
// DefaultImage.
func Normalize(svc domain.Service) (domain.Service, error) {
	svc.Slug = strings.TrimSpace(svc.Slug)
	svc.Name = strings.TrimSpace(svc.Name)
	svc.Description = strings.TrimSpace(svc.Description)
	svc.PriceDisplay = strings.TrimSpace(svc.PriceDisplay)
	svc.Image = strings.TrimSpace(svc.Image)
	if svc.Image == "" {
		svc.Image = DefaultImage
	}
	switch {
	case svc.Slug == "":
		return svc, fmt.Errorf("%w: service has no slug", ErrInvalidCatalog)
	case svc.Name == "":
		return svc, fmt.Errorf("%w: service %q has no name", ErrInvalidCatalog, svc.Slug)
	case math.IsNaN(svc.Price) || svc.Price < 0 || svc.Price > cart.MaxPrice:
		return svc, fmt.Errorf("%w: service %q has an invalid price", ErrInvalidCatalog, svc.Slug)
	}
	return svc, nil
}

// Snapshot returns c itself, so a fixed catalog can serve as a Source.
func (c *Catalog) Snapshot(context.Context) *Catalog { return c }

// All returns the services in file order.
func (c *Catalog) All() []domain.Service {
	return append([]domain.Service(nil), c.services...)
}

// Lookup finds a service by slug.
func (c *Catalog) Lookup(slug string) (domain.Service, bool) {
	i, ok := c.bySlug[strings.TrimSpace(slug)]
	if !ok {
		return domain.Service{}, false
	}
	return c.services[i], true
}
