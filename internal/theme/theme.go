// Package theme maps the closed set of theme identifiers to their palettes.
package theme

import "github.com/go-ports/pocketledger/internal/models"

// ID identifies a theme.
type ID string

const (
	ModernBlue  ID = models.DefaultTheme
	DeepDark    ID = "deep-dark"
	NatureGreen ID = "nature-green"
	RoyalPurple ID = "royal-purple"
)

// Fallback is resolved whenever an id is missing or unknown.
const Fallback = ModernBlue

// Config is the palette of a theme.
type Config struct {
	ID      ID
	Sidebar string
	Header  string
	Body    string
	Primary string
	Text    string
	Accent  string
}

var configs = map[ID]Config{
	ModernBlue: {
		ID: ModernBlue, Sidebar: "slate-900", Header: "white", Body: "slate-50",
		Primary: "blue-600", Text: "slate-800", Accent: "blue-600",
	},
	DeepDark: {
		ID: DeepDark, Sidebar: "black", Header: "zinc-900", Body: "zinc-950",
		Primary: "zinc-700", Text: "zinc-100", Accent: "zinc-400",
	},
	NatureGreen: {
		ID: NatureGreen, Sidebar: "emerald-900", Header: "white", Body: "emerald-50",
		Primary: "emerald-600", Text: "emerald-900", Accent: "emerald-600",
	},
	RoyalPurple: {
		ID: RoyalPurple, Sidebar: "indigo-950", Header: "white", Body: "indigo-50",
		Primary: "indigo-600", Text: "indigo-900", Accent: "indigo-600",
	},
}

// All lists the themes in display order.
func All() []ID {
	return []ID{ModernBlue, DeepDark, NatureGreen, RoyalPurple}
}

// Parse reports whether s names a known theme.
func Parse(s string) (ID, bool) {
	_, ok := configs[ID(s)]
	return ID(s), ok
}

// Resolve returns the palette for id, or the fallback palette.
func Resolve(id string) Config {
	if cfg, ok := configs[ID(id)]; ok {
		return cfg
	}
	return configs[Fallback]
}
