package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errLog struct {
	errs []error
}

func (el *errLog) Info(ctx context.Context, msg string, kv ...any) {}

func (el *errLog) Error(ctx context.Context, msg string, err error, kv ...any) {
	el.errs = append(el.errs, err)
}

func TestStore(t *testing.T) {

	st := &Store{Dir: filepath.Join(t.TempDir(), "state"), App: "picklist"}

	t.Run("empty when nothing saved", func(t *testing.T) {
		assert.Empty(t, st.Token())
		assert.Empty(t, st.Session())
	})

	t.Run("saved values come back", func(t *testing.T) {
		require.NoError(t, st.SaveSession(Session{AccessToken: "tok", User: "ann"}))
		require.NoError(t, st.SaveSettings(Settings{Session: "s-9"}))

		assert.Equal(t, "tok", st.Token())
		assert.Equal(t, "s-9", st.Session())
	})

	t.Run("clear keeps settings", func(t *testing.T) {
		require.NoError(t, st.Clear())

		assert.Empty(t, st.Token())
		assert.Equal(t, "s-9", st.Session())
	})

	t.Run("garbage reads as empty", func(t *testing.T) {
		err := os.WriteFile(st.path(sessionKey), []byte(":\tnot yaml ["), 0600)
		require.NoError(t, err)

		assert.Empty(t, st.Token())
	})
}

func TestStoreLogsUnreadable(t *testing.T) {

	lgr := &errLog{}
	st := &Store{Dir: t.TempDir(), App: "picklist", Logger: lgr}

	assert.Empty(t, st.Token())
	assert.Empty(t, lgr.errs)

	err := os.WriteFile(st.path(sessionKey), []byte(":\tnot yaml ["), 0600)
	require.NoError(t, err)

	assert.Empty(t, st.Token())
	assert.Len(t, lgr.errs, 1)

	require.NoError(t, st.SaveSettings(Settings{Session: "s-1"}))
	assert.Equal(t, "s-1", st.Session())
	assert.Len(t, lgr.errs, 1)
}
