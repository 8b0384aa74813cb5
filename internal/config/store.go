package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// overlayRecord mirrors Overlay with anchor and units kept as raw strings, so a
// single bad spelling does not reject the whole file.
type overlayRecord struct {
	Topic           string  `yaml:"topic"`
	Anchor          string  `yaml:"anchor"`
	Units           string  `yaml:"units"`
	OffsetX         int     `yaml:"offset_x"`
	OffsetY         int     `yaml:"offset_y"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Transport       string  `yaml:"image_transport"`
	KeepAspectRatio bool    `yaml:"keep_ratio"`
}

// DecodeOverlay parses a YAML overlay record. Missing keys keep their default
// values; unknown anchor or units spellings keep the default and are logged.
func DecodeOverlay(data []byte) (Overlay, error) {
	def := DefaultOverlay()
	rec := overlayRecord{
		Topic:           def.Topic,
		Anchor:          def.Anchor.String(),
		Units:           def.Units.String(),
		OffsetX:         def.OffsetX,
		OffsetY:         def.OffsetY,
		Width:           def.Width,
		Height:          def.Height,
		Transport:       def.Transport,
		KeepAspectRatio: def.KeepAspectRatio,
	}
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return def, fmt.Errorf("decode overlay settings: %w", err)
	}

	out := Overlay{
		Topic:           rec.Topic,
		Anchor:          def.Anchor,
		Units:           def.Units,
		OffsetX:         rec.OffsetX,
		OffsetY:         rec.OffsetY,
		Width:           rec.Width,
		Height:          rec.Height,
		Transport:       rec.Transport,
		KeepAspectRatio: rec.KeepAspectRatio,
	}
	if a, err := ParseAnchor(rec.Anchor); err == nil {
		out.Anchor = a
	} else {
		log.Printf("[!] %v, using %q", err, def.Anchor)
	}
	if u, err := ParseUnits(rec.Units); err == nil {
		out.Units = u
	} else {
		log.Printf("[!] %v, using %q", err, def.Units)
	}
	if out.Transport == "" {
		out.Transport = DefaultTransport
	}
	return out, nil
}

// LoadOverlay reads an overlay record from a YAML file.
// A missing file is not an error: the defaults are returned.
func LoadOverlay(path string) (Overlay, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultOverlay(), nil
	}
	if err != nil {
		return DefaultOverlay(), err
	}
	return DecodeOverlay(data)
}

// SaveOverlay writes an overlay record to a YAML file.
func SaveOverlay(path string, o Overlay) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode overlay settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
