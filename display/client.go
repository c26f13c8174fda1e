package display

import "golang.org/x/exp/maps"

// EventSink receives input events routed to a client's windows.
// Positions in pointer events are window-local.
type EventSink interface {
	KbdEvent(wnd WindowID, ev KbdEvent) error
	PtdEvent(wnd WindowID, ev PtdEvent) error
}

// Client is an application connection. It owns zero or more windows;
// the display additionally references those windows through the
// stacking order.
type Client struct {
	display *Display
	sink    EventSink
	windows map[WindowID]*Window
}

// NewClient creates a client delivering routed input events to sink.
// A nil sink drops all events. Register the client with
// Display.AddClient.
func NewClient(sink EventSink) *Client {
	return &Client{
		sink:    sink,
		windows: make(map[WindowID]*Window),
	}
}

// FindWindow finds a window owned by this client by ID.
func (c *Client) FindWindow(id WindowID) *Window {
	return c.windows[id]
}

// Windows returns a snapshot of the client's windows.
func (c *Client) Windows() map[WindowID]*Window {
	return maps.Clone(c.windows)
}

// Destroy tears down the client: all of its windows first, then the
// registration itself.
func (c *Client) Destroy() {
	for _, wnd := range maps.Values(c.windows) {
		if err := wnd.Destroy(); err != nil {
			// Teardown continues; the vacated region repaints with the
			// next frame.
			continue
		}
	}
	c.display.RemoveClient(c)
}

func (c *Client) postKbdEvent(wnd WindowID, ev KbdEvent) error {
	if c.sink == nil {
		return nil
	}
	return c.sink.KbdEvent(wnd, ev)
}

func (c *Client) postPtdEvent(wnd WindowID, ev PtdEvent) error {
	if c.sink == nil {
		return nil
	}
	return c.sink.PtdEvent(wnd, ev)
}
