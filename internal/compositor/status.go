package compositor

import "fmt"

// Status is the user-facing state of the overlay.
type Status int

const (
	StatusWaiting Status = iota // subscribed, no frame yet
	StatusOK
	StatusHidden
	StatusWarning // last draw was skipped
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusOK:
		return "ok"
	case StatusHidden:
		return "hidden"
	case StatusWarning:
		return "warning"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Status returns the current state and a short explanation (may be empty).
func (c *Compositor) Status() (Status, string) {
	return c.status, c.statusMsg
}

func waitingMessage(topic string) string {
	if topic == "" {
		return "no topic selected"
	}
	return fmt.Sprintf("no image received on %s", topic)
}
