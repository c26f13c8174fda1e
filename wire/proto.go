package wire

// Requests, client to server. Window-scoped requests carry the window
// ID in the message header sender field; display-level requests carry
// sender 0.
const (
	// OpHello registers the connection as an application client.
	OpHello uint16 = iota
	// OpHelloWM registers the connection as a window-management client.
	OpHelloWM
	// OpCreateWindow creates a window: rect, position, flags, caption.
	// Answered with EvWindowCreated.
	OpCreateWindow
	// OpDestroyWindow destroys the sender window.
	OpDestroyWindow
	// OpMoveWindow moves the sender window: position.
	OpMoveWindow
	// OpResizeWindow resizes the sender window: rect.
	OpResizeWindow
	// OpSetCaption renames the sender window: caption.
	OpSetCaption
	// OpRaiseWindow raises the sender window to the top of its
	// stacking segment.
	OpRaiseWindow
	// OpSetColor sets the drawing color of the sender window's
	// context: packed ARGB word.
	OpSetColor
	// OpFillRect fills a window-local rectangle with the drawing
	// color: rect.
	OpFillRect
	// OpBlit copies pixels from a shared-memory buffer into the sender
	// window: destination rect, buffer width and height, and the
	// buffer file descriptor out of band.
	OpBlit
	// OpPresent asks the server to composite the sender window's
	// accumulated damage.
	OpPresent
	// OpGetWindowList asks for the window list. WM connections only.
	// Answered with EvWindowList.
	OpGetWindowList
	// OpGetWindowInfo asks for a window's caption and flags: window
	// ID. WM connections only. Answered with EvWindowInfo.
	OpGetWindowInfo
	// OpActivateWindow raises and focuses a window: input device ID,
	// window ID. WM connections only.
	OpActivateWindow
)

// Events, server to client.
const (
	// EvError reports a failed request: message string.
	EvError uint16 = iota
	// EvWindowCreated answers OpCreateWindow: window ID.
	EvWindowCreated
	// EvKbd delivers a keyboard event to the sender window: device,
	// press flag, key, modifiers.
	EvKbd
	// EvPtd delivers a pointer event to the sender window: device,
	// type, window-local position, button.
	EvPtd
	// EvWindowAdded notifies WM connections of a new window: window ID.
	EvWindowAdded
	// EvWindowRemoved notifies WM connections of a destroyed window:
	// window ID.
	EvWindowRemoved
	// EvWindowChanged notifies WM connections of a retitled window:
	// window ID.
	EvWindowChanged
	// EvWindowList answers OpGetWindowList: count, then window IDs
	// front to back.
	EvWindowList
	// EvWindowInfo answers OpGetWindowInfo: window ID, flags, caption.
	EvWindowInfo
)
