package display

import "fmt"

// WMEventSink receives window lifecycle notifications on behalf of a
// window-management client (a window manager or a taskbar).
type WMEventSink interface {
	WindowAdded(WindowID) error
	WindowRemoved(WindowID) error
	WindowChanged(WindowID) error
}

// WMClient is a privileged window-management connection. It is never
// an application Client; the two registries are disjoint.
type WMClient struct {
	display *Display
	sink    WMEventSink
}

// NewWMClient creates a WM client delivering lifecycle events to sink.
// Register it with Display.AddWMClient.
func NewWMClient(sink WMEventSink) *WMClient {
	return &WMClient{sink: sink}
}

// WindowList returns the IDs of all windows, front to back.
func (wm *WMClient) WindowList() []WindowID {
	ids := make([]WindowID, 0, len(wm.display.windows))
	for _, wnd := range wm.display.windows {
		ids = append(ids, wnd.id)
	}
	return ids
}

// WindowInfo reports a window's caption and flags.
func (wm *WMClient) WindowInfo(id WindowID) (caption string, flags WindowFlags, err error) {
	wnd := wm.display.FindWindow(id)
	if wnd == nil {
		return "", 0, fmt.Errorf("window info: unknown window %v", id)
	}
	return wnd.caption, wnd.flags, nil
}

func (wm *WMClient) postWindowAdded(id WindowID) error {
	if wm.sink == nil {
		return nil
	}
	return wm.sink.WindowAdded(id)
}

func (wm *WMClient) postWindowRemoved(id WindowID) error {
	if wm.sink == nil {
		return nil
	}
	return wm.sink.WindowRemoved(id)
}

func (wm *WMClient) postWindowChanged(id WindowID) error {
	if wm.sink == nil {
		return nil
	}
	return wm.sink.WindowChanged(id)
}
