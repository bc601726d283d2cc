package selector

import (
	"strings"

	nt "picklist/entity"
)

// localModels returns the models of static options matching values.
func (sel Selector) localModels(values []string) map[string]nt.Item {

	models := map[string]nt.Item{}
	for _, opt := range sel.cfg.Options {
		for _, val := range values {
			if opt.Value == val {
				models[val] = optionModel(opt)
			}
		}
	}
	return models
}

// optionModel returns the option's model, or one made from its label and value.
func optionModel(opt nt.Option) nt.Item {

	if opt.Model != nil {
		return opt.Model
	}
	return nt.Item{
		defaultLabelPath: opt.Label,
		defaultValuePath: opt.Value,
	}
}

// filterChoices keeps choices whose label contains term, ignoring case.
func filterChoices(choices []Choice, term string) []Choice {

	if term == "" {
		return choices
	}

	needle := strings.ToLower(term)
	filtered := []Choice{}
	for _, choice := range choices {
		if strings.Contains(strings.ToLower(choice.Label), needle) {
			filtered = append(filtered, choice)
		}
	}
	return filtered
}
