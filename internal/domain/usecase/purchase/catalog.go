package purchase

import "ggshop-bot/internal/generator"

// GenerateFunc produces one item. Pure and side-effect-free.
type GenerateFunc func() (string, error)

// Item is one catalog entry: a tagged variant binding a unit price to a
// generator capability. New item types are added here, never in dispatch code.
type Item struct {
	Type           string
	Title          string
	UnitPriceCents int64
	Generate       GenerateFunc
}

// Catalog maps item-type tags to entries. Static policy data.
type Catalog map[string]Item

// DefaultCatalog wires the shipped item types to a generator.
func DefaultCatalog(g *generator.Generator) Catalog {
	return Catalog{
		"gg": {
			Type:           "gg",
			Title:          "GG",
			UnitPriceCents: 1000, // 10.00 per unit
			Generate:       func() (string, error) { return g.GG(), nil },
		},
		"cc": {
			Type:           "cc",
			Title:          "Test card",
			UnitPriceCents: 1500, // 15.00 per unit
			Generate:       func() (string, error) { return g.Card(), nil },
		},
	}
}
