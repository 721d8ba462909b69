package ocr

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Grid subdivides a zone into equal per-card cells.
type Grid struct {
	Rows     int `mapstructure:"rows"`
	Cols     int `mapstructure:"cols"`
	MaxCards int `mapstructure:"max_cards"`
}

// ZoneSpec is a fractional rectangle (0-1 coordinates) within a screenshot,
// resolved against concrete image dimensions at extraction time.
type ZoneSpec struct {
	X      float64 `mapstructure:"x"`
	Y      float64 `mapstructure:"y"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Grid   *Grid   `mapstructure:"grid"`
}

// Profile names the zones of one platform at one resolution bucket.
type Profile struct {
	Zones map[string]ZoneSpec `mapstructure:"zones"`
}

// ProfileTable maps platform -> resolution bucket ("1920x1080") -> Profile.
// Loaded once, read-only, safe to share across requests.
type ProfileTable map[Format]map[string]Profile

type resolution struct {
	w, h int
}

func parseResolution(name string) (resolution, bool) {
	var r resolution
	if _, err := fmt.Sscanf(name, "%dx%d", &r.w, &r.h); err != nil {
		return r, false
	}
	return r, true
}

// Lookup finds the profile for a platform whose resolution bucket is
// nearest to the given dimensions by Manhattan distance. A platform with no
// configured profiles is an explicit ErrNoProfile, not a silent skip.
func (t ProfileTable) Lookup(platform Format, width, height int) (Profile, string, error) {
	buckets, ok := t[platform]
	if !ok || len(buckets) == 0 {
		return Profile{}, "", fmt.Errorf("%w: platform %s", ErrNoProfile, platform)
	}
	bestName := ""
	bestDist := -1
	for name := range buckets {
		r, ok := parseResolution(name)
		if !ok {
			continue
		}
		d := abs(width-r.w) + abs(height-r.h)
		if bestDist < 0 || d < bestDist || (d == bestDist && name < bestName) {
			bestDist = d
			bestName = name
		}
	}
	if bestName == "" {
		return Profile{}, "", fmt.Errorf("%w: platform %s has no parseable resolutions", ErrNoProfile, platform)
	}
	return buckets[bestName], bestName, nil
}

// altPlatformKey holds alternate layouts used by the repair loop for
// platforms with ambiguous window chrome (MTGO's list can sit on either
// half of a wide capture).
func altPlatformKey(platform Format) Format {
	return Format(string(platform) + "_alt")
}

// AltLookup returns the alternate profile for a platform, if configured.
func (t ProfileTable) AltLookup(platform Format, width, height int) (Profile, string, error) {
	return t.Lookup(altPlatformKey(platform), width, height)
}

// DefaultProfiles is the built-in zone table for Arena and MTGO captures at
// the common desktop resolutions. Fractions were tuned against real
// screenshots; they are policy, not contract.
func DefaultProfiles() ProfileTable {
	arena := Profile{Zones: map[string]ZoneSpec{
		"deckHeader": {X: 0.02, Y: 0.02, Width: 0.40, Height: 0.08},
		"mainDeck": {
			X: 0.05, Y: 0.12, Width: 0.68, Height: 0.78,
			Grid: &Grid{Rows: 8, Cols: 8, MaxCards: 60},
		},
		"sideboard": {
			X: 0.76, Y: 0.12, Width: 0.22, Height: 0.78,
			Grid: &Grid{Rows: 15, Cols: 1, MaxCards: 15},
		},
		"deckStats": {X: 0.05, Y: 0.91, Width: 0.68, Height: 0.07},
	}}
	mtgo := Profile{Zones: map[string]ZoneSpec{
		"deckHeader":      {X: 0.01, Y: 0.01, Width: 0.50, Height: 0.06},
		"mainDeck":        {X: 0.01, Y: 0.08, Width: 0.47, Height: 0.90},
		"sideboardHeader": {X: 0.50, Y: 0.01, Width: 0.30, Height: 0.06},
		"sideboard":       {X: 0.50, Y: 0.08, Width: 0.30, Height: 0.60},
	}}
	// Alternate MTGO layout: list pane occupying the full width, sideboard
	// folded below the mainboard. Used only by the repair loop.
	mtgoAlt := Profile{Zones: map[string]ZoneSpec{
		"mainDeck":  {X: 0.01, Y: 0.08, Width: 0.98, Height: 0.62},
		"sideboard": {X: 0.01, Y: 0.72, Width: 0.98, Height: 0.26},
	}}

	perRes := func(p Profile) map[string]Profile {
		return map[string]Profile{
			"3840x2160": p,
			"2560x1440": p,
			"1920x1080": p,
			"1280x720":  p,
		}
	}
	return ProfileTable{
		FormatArena:                perRes(arena),
		FormatMTGO:                 perRes(mtgo),
		altPlatformKey(FormatMTGO): perRes(mtgoAlt),
	}
}

// LoadProfiles reads a zone profile table from a yaml/json file, merged over
// the defaults so partial overrides are possible.
func LoadProfiles(path string) (ProfileTable, error) {
	table := DefaultProfiles()
	if path == "" {
		return table, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read zone profiles %s: %w", path, err)
	}
	var raw map[string]map[string]Profile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("parse zone profiles %s: %w", path, err)
	}
	for platform, buckets := range raw {
		key := Format(strings.ToLower(platform))
		if table[key] == nil {
			table[key] = map[string]Profile{}
		}
		for res, p := range buckets {
			table[key][res] = p
		}
	}
	return table, nil
}
