package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Aliases  map[string]LeadStage `yaml:"aliases"`
	Profiles []profileFile        `yaml:"profiles"`
}

type profileFile struct {
	Name              string                   `yaml:"name"`
	Slugs             []string                 `yaml:"slugs"`
	ConversationTable string                   `yaml:"conversation_table"`
	HideDiscarded     bool                     `yaml:"hide_discarded"`
	Rules             []Rule                   `yaml:"rules"`
	Labels            map[LeadStage]StageLabel `yaml:"labels"`
}

// LoadCatalogFile extends the built-in catalog with the rules in path.
// An empty path returns the built-in catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage rules: %w", err)
	}
	c, err := ExtendCatalog(DefaultCatalog(), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ExtendCatalog returns a copy of base with the YAML document applied.
// Profiles with an existing name replace the built-in profile.
func ExtendCatalog(base *Catalog, data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse stage rules: %w", err)
	}

	c := base.clone()
	for alias, stage := range file.Aliases {
		if err := c.addAlias(alias, stage); err != nil {
			return nil, err
		}
	}
	for _, pf := range file.Profiles {
		p := Profile{
			Name:              pf.Name,
			Slugs:             pf.Slugs,
			Rules:             pf.Rules,
			Labels:            pf.Labels,
			ConversationTable: pf.ConversationTable,
			HideDiscarded:     pf.HideDiscarded,
		}
		if err := c.addProfile(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}
