// Package picklist hosts a remote searchable selector in a small terminal form.
package picklist

import (
	"context"

	nt "picklist/entity"
	"picklist/selector"
)

const labelWidth = 12

// Config is the form's configuration.
type Config struct {
	Title    string          `yaml:"title"`
	Label    string          `yaml:"label"`
	Selector selector.Config `yaml:"selector"`
	Toggle   Toggle          `yaml:"toggle,omitempty"`
}

// New creates the form's Model.
func (cfg *Config) New(ctx context.Context, fetcher selector.Fetcher, lgr nt.Logger) Model {

	return Model{
		title:    cfg.Title,
		label:    cfg.Label,
		Selector: cfg.Selector.New(ctx, fetcher, lgr),
		Toggle:   NewCheckbox(cfg.Toggle, cfg.Selector.Params),
		empty:    cfg.Selector.Endpoint == "" && len(cfg.Selector.Options) == 0,
		ctx:      ctx,
		logger:   lgr,
	}
}
