package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAnchor = errors.New("unknown anchor")
	ErrUnknownUnits  = errors.New("unknown units")
)

// Anchor names the corner, edge midpoint or center of the overlay rectangle
// that is pinned to the matching point of the canvas.
type Anchor int

const (
	TopLeft Anchor = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

var anchorNames = [...]string{
	TopLeft:      "top left",
	TopCenter:    "top center",
	TopRight:     "top right",
	CenterLeft:   "center left",
	Center:       "center",
	CenterRight:  "center right",
	BottomLeft:   "bottom left",
	BottomCenter: "bottom center",
	BottomRight:  "bottom right",
}

// Anchors lists every anchor in declaration order.
func Anchors() []Anchor {
	out := make([]Anchor, len(anchorNames))
	for i := range anchorNames {
		out[i] = Anchor(i)
	}
	return out
}

func (a Anchor) String() string {
	if a < 0 || int(a) >= len(anchorNames) {
		return fmt.Sprintf("anchor(%d)", int(a))
	}
	return anchorNames[a]
}

// Horizontal returns the fraction of the rectangle width that lies left of the
// anchor point: 0 for left anchors, 0.5 for centered ones, 1 for right anchors.
func (a Anchor) Horizontal() float64 {
	switch a {
	case TopCenter, Center, BottomCenter:
		return 0.5
	case TopRight, CenterRight, BottomRight:
		return 1
	default:
		return 0
	}
}

// Vertical is the vertical counterpart of Horizontal.
func (a Anchor) Vertical() float64 {
	switch a {
	case CenterLeft, Center, CenterRight:
		return 0.5
	case BottomLeft, BottomCenter, BottomRight:
		return 1
	default:
		return 0
	}
}

// ParseAnchor accepts the serialized spellings ("top left", "center", ...).
// Case and the separator between words ("top-left", "top_left") are ignored.
func ParseAnchor(s string) (Anchor, error) {
	key := normalizeName(s)
	for i, name := range anchorNames {
		if key == name {
			return Anchor(i), nil
		}
	}
	return TopLeft, fmt.Errorf("%w: %q", ErrUnknownAnchor, s)
}

func (a Anchor) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

func (a *Anchor) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseAnchor(value.Value)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Units selects how Overlay.Width and Overlay.Height are interpreted.
type Units int

const (
	Pixels Units = iota
	Percent
)

var unitNames = [...]string{
	Pixels:  "pixels",
	Percent: "percent",
}

func (u Units) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return fmt.Sprintf("units(%d)", int(u))
	}
	return unitNames[u]
}

func ParseUnits(s string) (Units, error) {
	key := normalizeName(s)
	for i, name := range unitNames {
		if key == name {
			return Units(i), nil
		}
	}
	return Pixels, fmt.Errorf("%w: %q", ErrUnknownUnits, s)
}

func (u Units) MarshalYAML() (interface{}, error) {
	return u.String(), nil
}

func (u *Units) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseUnits(value.Value)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
