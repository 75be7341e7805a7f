package columns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Keywords struct {
	Identity []string `yaml:"identity"`
	Balance  []string `yaml:"balance"`
	Hours    []string `yaml:"hours"`
	Days     []string `yaml:"days"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Identity: []string{"username", "creator username", "créateur", "creator", "pseudo", "nom d'utilisateur", "utilisateur", "nom", "name"},
		Balance:  []string{"diamonds", "diamants", "diamond", "diamant", "balance", "solde"},
		Hours:    []string{"live duration", "durée de live", "heures de live", "live hours", "hours", "heures", "durée", "duration"},
		Days:     []string{"valid days", "jours valides", "live days", "jours de live", "days", "jours"},
	}
}

// LoadKeywords reads keyword overrides from a YAML file. Fields left empty in
// the file keep their defaults.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read column keywords: %w", err)
	}
	var override Keywords
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return kw, fmt.Errorf("parse column keywords: %w", err)
	}
	if len(override.Identity) > 0 {
		kw.Identity = override.Identity
	}
	if len(override.Balance) > 0 {
		kw.Balance = override.Balance
	}
	if len(override.Hours) > 0 {
		kw.Hours = override.Hours
	}
	if len(override.Days) > 0 {
		kw.Days = override.Days
	}
	return kw, nil
}
