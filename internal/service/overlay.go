package service

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"opsdash/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed promotions.yaml
var defaultOverlay []byte

// OverlayEntry names one promotion drawn on the monthly series.
type OverlayEntry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type overlayDocument struct {
	Promotions []OverlayEntry `yaml:"promotions"`
}

// LoadOverlay reads the overlay from path, or the embedded default when
// path is empty.
func LoadOverlay(path string) ([]OverlayEntry, error) {
	if path == "" {
		return ParseOverlay(defaultOverlay)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read promotion overlay: %w", err)
	}
	entries, err := ParseOverlay(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseOverlay decodes an overlay document. Every entry needs a name and a
// colour, and names must be unique.
func ParseOverlay(b []byte) ([]OverlayEntry, error) {
	var doc overlayDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse promotion overlay: %w", err)
	}
	seen := make(map[string]bool, len(doc.Promotions))
	for i, e := range doc.Promotions {
		if e.Name == "" || e.Color == "" {
			return nil, fmt.Errorf("promotion overlay entry %d: name and color are required", i+1)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("promotion overlay: duplicate name %q", e.Name)
		}
		seen[e.Name] = true
	}
	return doc.Promotions, nil
}

// MissingPromotions lists overlay names that have no row in the promotions
// table.
func MissingPromotions(ds *model.Dataset, overlay []OverlayEntry) []string {
	var missing []string
	for _, e := range overlay {
		if _, ok := findPromotion(ds, e.Name); !ok {
			missing = append(missing, e.Name)
		}
	}
	return missing
}

// ── Supplier policy ───────────────────────────────────────────────────────────

// SupplierPolicy chooses the supply price of a product with several
// suppliers when computing profit.
type SupplierPolicy string

const (
	// SupplierFirst keeps the first product_suppliers row of each product.
	SupplierFirst SupplierPolicy = "first"
	// SupplierCheapest keeps the lowest supply price; ties keep file order.
	SupplierCheapest SupplierPolicy = "cheapest"
)

var ErrUnknownPolicy = errors.New("unknown supplier policy")

func ParseSupplierPolicy(s string) (SupplierPolicy, error) {
	switch p := SupplierPolicy(s); p {
	case SupplierFirst, SupplierCheapest:
		return p, nil
	case "":
		return SupplierFirst, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
