// Package message holds tea messages the host shares with its collaborators outside the event loop.
package message

// NoticeMsg carries a user visible error notice
type NoticeMsg struct {
	Title       string
	Description string
}

// UnauthorizedMsg signals the session was dropped after a 401
type UnauthorizedMsg struct{}

// ErrorMsg contains an error
type ErrorMsg struct {
	Err error
}
