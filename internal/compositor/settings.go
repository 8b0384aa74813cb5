package compositor

import (
	"github.com/ivlev/overlay/internal/config"
)

// Config returns a copy of the current overlay record.
func (c *Compositor) Config() config.Overlay { return c.cfg }

// Configure applies a whole record, e.g. one loaded from disk.
// A different topic or transport re-subscribes.
func (c *Compositor) Configure(o config.Overlay) {
	resubscribe := o.Topic != c.cfg.Topic || o.Transport != c.cfg.Transport
	c.cfg = o
	if resubscribe {
		c.Resubscribe()
	}
}

func (c *Compositor) SetTopic(topic string) {
	if topic == c.cfg.Topic {
		return
	}
	c.cfg.Topic = topic
	c.Resubscribe()
}

func (c *Compositor) SetTransport(transport string) {
	if transport == c.cfg.Transport {
		return
	}
	c.cfg.Transport = transport
	c.Resubscribe()
}

func (c *Compositor) SetAnchor(a config.Anchor) { c.cfg.Anchor = a }

// SetAnchorName sets the anchor from its serialized spelling.
// An unknown name leaves the anchor unchanged.
func (c *Compositor) SetAnchorName(name string) error {
	a, err := config.ParseAnchor(name)
	if err != nil {
		return err
	}
	c.cfg.Anchor = a
	return nil
}

func (c *Compositor) SetUnits(u config.Units) { c.cfg.Units = u }

// SetUnitsName sets the units from their serialized spelling.
// An unknown name leaves the units unchanged.
func (c *Compositor) SetUnitsName(name string) error {
	u, err := config.ParseUnits(name)
	if err != nil {
		return err
	}
	c.cfg.Units = u
	return nil
}

func (c *Compositor) SetOffsetX(offset int) { c.cfg.OffsetX = offset }

func (c *Compositor) SetOffsetY(offset int) { c.cfg.OffsetY = offset }

func (c *Compositor) SetWidth(width float64) { c.cfg.Width = width }

func (c *Compositor) SetHeight(height float64) { c.cfg.Height = height }

func (c *Compositor) SetKeepAspectRatio(keep bool) { c.cfg.KeepAspectRatio = keep }
