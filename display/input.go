package display

import "image"

// KbdEvent is a keyboard event from a physical input device.
type KbdEvent struct {
	// Device is the physical device the event came from; it selects
	// the seat the event is routed through.
	Device DeviceID
	Press  bool
	Key    uint32
	Mods   uint32
}

// PtdEventType distinguishes pointer event kinds.
type PtdEventType uint32

const (
	PtdMove PtdEventType = iota
	PtdPress
	PtdRelease
)

// PtdEvent is a pointer event. Pos is the absolute display position
// when the display routes the event; the position is translated to
// window-local coordinates before delivery to a client.
type PtdEvent struct {
	Device DeviceID
	Type   PtdEventType
	Pos    image.Point
	Button uint32
}
