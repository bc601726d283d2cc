package message

import (
	"context"

	tea "charm.land/bubbletea/v2"
)

// Sender specifies somewhere to deliver msgs from outside the event loop, such as a tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Relay forwards client notices into the event loop.
// It implements client.Notifier, and Unauthorized suits client.OnUnauthorized.
type Relay struct {
	Sender Sender
}

func (rl *Relay) Notify(ctx context.Context, title, description string) {
	rl.send(NoticeMsg{Title: title, Description: description})
}

func (rl *Relay) Unauthorized(ctx context.Context) {
	rl.send(UnauthorizedMsg{})
}

// ErrorCmd returns a command that reports err
func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// unexported

func (rl *Relay) send(msg tea.Msg) {
	if rl.Sender == nil {
		return
	}
	rl.Sender.Send(msg)
}
