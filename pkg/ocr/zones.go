package ocr

import (
	"fmt"
	"image"
	"log"
	"sort"

	"github.com/disintegration/imaging"
)

// Zone is a cropped region of the screenshot, tagged with the profile zone
// name it came from. Grid cells carry the parent name plus a "_card" suffix.
type Zone struct {
	Name  string
	Image image.Image
	Rect  image.Rectangle
}

// ZoneSet is the result of slicing a screenshot along a profile.
type ZoneSet struct {
	Main    []Zone
	Side    []Zone
	Headers []Zone
	// Confidence reflects how much of the expected layout was recovered,
	// 0.7 base climbing with zone count.
	Confidence float64
	// Errors describes zones the profile named that could not be cropped.
	Errors []string
}

// Zones returns every zone in deterministic order, mainboard first.
func (s ZoneSet) Zones() []Zone {
	out := make([]Zone, 0, len(s.Main)+len(s.Side)+len(s.Headers))
	out = append(out, s.Main...)
	out = append(out, s.Side...)
	out = append(out, s.Headers...)
	return out
}

// ExtractZones crops an image along a profile's fractional zones. Zones that
// resolve to degenerate or out-of-frame rectangles are skipped with a log
// line rather than failing the whole extraction.
func ExtractZones(img image.Image, profile Profile) ZoneSet {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	names := make([]string, 0, len(profile.Zones))
	for name := range profile.Zones {
		names = append(names, name)
	}
	sort.Strings(names)

	var set ZoneSet
	total := 0
	for _, name := range names {
		spec := profile.Zones[name]
		rect, ok := absoluteRect(spec, w, h)
		if !ok {
			log.Printf("zone %s: degenerate rect at %dx%d, skipping", name, w, h)
			set.Errors = append(set.Errors, fmt.Sprintf("zone %s could not be cropped at %dx%d", name, w, h))
			continue
		}
		crop := imaging.Crop(img, rect)
		zones := []Zone{{Name: name, Image: crop, Rect: rect}}
		if spec.Grid != nil {
			if cells := subdivide(crop, rect, name, *spec.Grid); len(cells) > 0 {
				zones = cells
			}
		}
		total += len(zones)
		switch classifyZone(name) {
		case SectionSideboard:
			set.Side = append(set.Side, zones...)
		case SectionMainboard:
			set.Main = append(set.Main, zones...)
		default:
			set.Headers = append(set.Headers, zones...)
		}
	}
	set.Confidence = zoneConfidence(total)
	return set
}

// absoluteRect resolves a fractional spec against concrete dimensions,
// truncating to integers and clamping to the frame.
func absoluteRect(spec ZoneSpec, w, h int) (image.Rectangle, bool) {
	x0 := int(spec.X * float64(w))
	y0 := int(spec.Y * float64(h))
	x1 := x0 + int(spec.Width*float64(w))
	y1 := y0 + int(spec.Height*float64(h))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > w {
		x1 = w
	}
	if y1 > h {
		y1 = h
	}
	if x1-x0 < 2 || y1-y0 < 2 {
		return image.Rectangle{}, false
	}
	return image.Rect(x0, y0, x1, y1), true
}

// subdivide slices a zone crop into grid cells, row-major, capped at
// MaxCards. Cells too small to carry text are dropped.
func subdivide(crop image.Image, rect image.Rectangle, parent string, grid Grid) []Zone {
	if grid.Rows < 1 || grid.Cols < 1 {
		return nil
	}
	cw := rect.Dx() / grid.Cols
	ch := rect.Dy() / grid.Rows
	if cw < 4 || ch < 4 {
		return nil
	}
	max := grid.MaxCards
	if max <= 0 {
		max = grid.Rows * grid.Cols
	}
	cells := make([]Zone, 0, max)
	for row := 0; row < grid.Rows && len(cells) < max; row++ {
		for col := 0; col < grid.Cols && len(cells) < max; col++ {
			cell := image.Rect(col*cw, row*ch, (col+1)*cw, (row+1)*ch)
			cells = append(cells, Zone{
				Name:  parent + "_card",
				Image: imaging.Crop(crop, cell),
				Rect:  cell.Add(rect.Min),
			})
		}
	}
	return cells
}

func classifyZone(name string) Section {
	switch name {
	case "sideboard":
		return SectionSideboard
	case "mainDeck":
		return SectionMainboard
	}
	return Section("")
}

// zoneConfidence starts at 0.7 and climbs with the number of recovered
// zones, capped at 1.0.
func zoneConfidence(total int) float64 {
	c := 0.7
	if total > 10 {
		c += 0.1
	}
	if total > 20 {
		c += 0.1
	}
	if total > 40 {
		c += 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// String implements a compact debug form used in log lines.
func (z Zone) String() string {
	return fmt.Sprintf("%s[%dx%d]", z.Name, z.Rect.Dx(), z.Rect.Dy())
}
