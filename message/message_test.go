package message

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeSender struct {
	msgs []tea.Msg
}

func (fs *fakeSender) Send(msg tea.Msg) {
	fs.msgs = append(fs.msgs, msg)
}

func TestRelay(t *testing.T) {

	fs := &fakeSender{}
	rl := &Relay{Sender: fs}

	rl.Notify(context.Background(), "Forbidden !", "You are not allowed to access this API !")
	rl.Unauthorized(context.Background())

	assert.Equal(t, []tea.Msg{
		NoticeMsg{Title: "Forbidden !", Description: "You are not allowed to access this API !"},
		UnauthorizedMsg{},
	}, fs.msgs)

	// not yet attached to a program
	(&Relay{}).Notify(context.Background(), "Error", "dropped")
}

func TestErrorCmd(t *testing.T) {

	err := errors.New("oops")
	assert.Equal(t, ErrorMsg{Err: err}, ErrorCmd(err)())
}
