package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlay_EmbeddedDefault(t *testing.T) {
	overlay, err := LoadOverlay("")
	require.NoError(t, err)
	require.Len(t, overlay, 5)
	assert.Equal(t, OverlayEntry{Name: "Summer Sale 2024", Color: "#FF9900"}, overlay[0])
}

func TestLoadOverlay_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	doc := "promotions:\n  - name: Flash Sale\n    color: \"#123456\"\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	overlay, err := LoadOverlay(path)
	require.NoError(t, err)
	assert.Equal(t, []OverlayEntry{{Name: "Flash Sale", Color: "#123456"}}, overlay)
}

func TestLoadOverlay_MissingFile(t *testing.T) {
	_, err := LoadOverlay(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseOverlay_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing color": "promotions:\n  - name: A\n",
		"missing name":  "promotions:\n  - color: \"#000000\"\n",
		"duplicate":     "promotions:\n  - {name: A, color: red}\n  - {name: A, color: blue}\n",
		"not yaml":      "promotions: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOverlay([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestMissingPromotions(t *testing.T) {
	overlay, err := LoadOverlay("")
	require.NoError(t, err)

	missing := MissingPromotions(cleanedDataset(t), overlay)
	assert.Len(t, missing, 4)
	assert.NotContains(t, missing, "Black Friday Deal")
}

func TestParseSupplierPolicy(t *testing.T) {
	p, err := ParseSupplierPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SupplierFirst, p)

	p, err = ParseSupplierPolicy("cheapest")
	require.NoError(t, err)
	assert.Equal(t, SupplierCheapest, p)

	_, err = ParseSupplierPolicy("average")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestParseMapView(t *testing.T) {
	v, err := ParseMapView("customers")
	require.NoError(t, err)
	assert.Equal(t, MapCustomers, v)
	assert.Equal(t, "Customers Distribution by State", v.Title())

	_, err = ParseMapView("")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}
