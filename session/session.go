// Package session persists login session and settings as small yaml files.
package session

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	nt "picklist/entity"
	"picklist/util"
)

const (
	sessionKey  = "session"
	settingsKey = "settings"
	fileMode    = 0600
)

// Session is what login leaves behind.
type Session struct {
	AccessToken string `yaml:"access_token,omitempty"`
	User        string `yaml:"user,omitempty"`
}

// Settings are user preferences, including the secondary session id.
type Settings struct {
	Session string `yaml:"session,omitempty"`
}

// Store keeps session and settings under dir, namespaced by app.
// Reads never fail: a missing or unreadable file is an empty one.
// Unreadable files are logged when Logger is set.
type Store struct {
	Dir    string    `yaml:"dir"`
	App    string    `yaml:"app"`
	Logger nt.Logger `yaml:"-"`
}

// Token returns the persisted access token.
func (st *Store) Token() string {

	sess := Session{}
	st.load(sessionKey, &sess)
	return sess.AccessToken
}

// Session returns the persisted secondary session id.
func (st *Store) Session() string {

	settings := Settings{}
	st.load(settingsKey, &settings)
	return settings.Session
}

// Clear drops the persisted session, leaving settings alone.
func (st *Store) Clear() error {
	return st.SaveSession(Session{})
}

// SaveSession persists a session.
func (st *Store) SaveSession(sess Session) error {
	return st.save(sessionKey, sess)
}

// SaveSettings persists settings.
func (st *Store) SaveSettings(settings Settings) error {
	return st.save(settingsKey, settings)
}

// unexported

func (st *Store) path(key string) string {
	return filepath.Join(st.Dir, st.App+"-"+key+".yaml")
}

func (st *Store) load(key string, obj any) {

	path := st.path(key)
	if _, err := os.Stat(path); err != nil {
		return
	}

	err := util.LoadConfig(obj, path)
	if err != nil && st.Logger != nil {
		st.Logger.Error(context.Background(), "failed to load session file", err, "path", path)
	}
}

func (st *Store) save(key string, obj any) (err error) {

	err = os.MkdirAll(st.Dir, 0700)
	if err != nil {
		err = errors.Wrapf(err, "failed to create %s", st.Dir)
		return
	}

	err = util.WriteConfig(obj, st.path(key), fileMode)
	return
}
