package config

// Config holds the runtime settings of the overlay player.
// Populated from flags in cmd/overlay; the overlay record itself lives in Overlay.
type Config struct {
	CanvasWidth  int
	CanvasHeight int
	CanvasScale  float64
	Background   string
	FPS          int
	SourceFPS    float64
	Duration     float64
	Kernel       string
	OutputVideo  string
	Snapshot     string
	VideoEncoder string
	Quality      int
	Realtime     bool
	ShowStats    bool
	BuildVersion string
}

// Default values for the overlay record.
const (
	DefaultWidth     = 320.0
	DefaultHeight    = 240.0
	DefaultTransport = "default"
)

// Overlay is the persisted overlay record: where the frame goes and how big it is.
type Overlay struct {
	Topic           string  `yaml:"topic"`
	Anchor          Anchor  `yaml:"anchor"`
	Units           Units   `yaml:"units"`
	OffsetX         int     `yaml:"offset_x"`
	OffsetY         int     `yaml:"offset_y"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Transport       string  `yaml:"image_transport"`
	KeepAspectRatio bool    `yaml:"keep_ratio"`
}

// DefaultOverlay returns the record a freshly created overlay starts with.
func DefaultOverlay() Overlay {
	return Overlay{
		Anchor:    TopLeft,
		Units:     Pixels,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Transport: DefaultTransport,
	}
}
