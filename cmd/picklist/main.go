package main

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/clarktrimble/sabot"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"picklist"
	"picklist/client"
	"picklist/fetch"
	"picklist/message"
	"picklist/session"
	"picklist/util"
)

const (
	cfgMode = 0644
	logMode = 0644
)

// Config is the app's configuration.
type Config struct {
	Log     util.LogConfig  `yaml:"log"`
	Session session.Store   `yaml:"session"`
	Client  client.Config   `yaml:"client"`
	Form    picklist.Config `yaml:"form"`
}

const sample = `log:
  file: picklist.log
  max_size: 10
  max_backups: 3
session:
  dir: .
  app: picklist
client:
  base_url: http://localhost:8087
  timeout: 5s
  retry_max: 2
form:
  title: Assign a reviewer
  label: Reviewer
  selector:
    endpoint: /people
    value_path: id
    label_path: name
    limit: 10
    debounce: 300ms
  toggle:
    label: Staff only
    param: kind
    value: staff
`

func main() {

	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "picklist",
		Short: "Pick from a remote, searchable, paged list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "picklist.yaml", "config file, a sample is written if missing")

	rootCmd.AddCommand(newLoginCmd(&cfgPath))
	rootCmd.AddCommand(newLogoutCmd(&cfgPath))

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLoginCmd(cfgPath *string) *cobra.Command {

	var token, sess, user string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an access token for the option server",
		RunE: func(cmd *cobra.Command, args []string) (err error) {

			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return
			}

			err = cfg.Session.SaveSession(session.Session{AccessToken: token, User: user})
			if err != nil {
				return
			}

			if sess != "" {
				err = cfg.Session.SaveSettings(session.Settings{Session: sess})
			}
			return
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token (required)")
	cmd.Flags().StringVar(&sess, "session", "", "secondary session id")
	cmd.Flags().StringVar(&user, "user", "", "user name, for the record")
	cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCmd(cfgPath *string) *cobra.Command {

	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the saved access token",
		RunE: func(cmd *cobra.Command, args []string) (err error) {

			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return
			}

			err = cfg.Session.Clear()
			return
		},
	}
}

func run(cfgPath string) (err error) {

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return
	}

	logFile := util.OpenLog(cfg.Log, logMode)
	defer util.CloseLog(logFile)

	lgr := &sabot.Sabot{Writer: logFile}
	ctx := context.Background()

	lgr.Info(ctx, "starting picklist", "base_url", cfg.Client.BaseURL, "endpoint", cfg.Form.Selector.Endpoint)

	relay := &message.Relay{}

	cfg.Session.Logger = lgr
	cl := cfg.Client.New(&cfg.Session, lgr)
	cl.Notifier = relay
	cl.OnUnauthorized = relay.Unauthorized

	model := cfg.Form.New(ctx, fetch.New(cl), lgr)

	program := tea.NewProgram(model)
	relay.Sender = program

	_, err = program.Run()
	if err != nil {
		lgr.Error(ctx, "program failed", err)
		err = errors.Wrapf(err, "failed to run picklist")
		return
	}

	lgr.Info(ctx, "exiting picklist")
	return
}

func loadConfig(cfgPath string) (cfg *Config, err error) {

	written, err := util.SampleConfig([]byte(sample), cfgPath, cfgMode)
	if err != nil {
		return
	}
	if written {
		fmt.Printf("wrote sample config to %s\n", cfgPath)
	}

	cfg = &Config{}
	err = util.LoadConfig(cfg, cfgPath)
	return
}
