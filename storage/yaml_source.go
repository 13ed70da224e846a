package storage

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"listings-aggregator/models"
	"listings-aggregator/services"
)

// seedFile is the on-disk layout of a YAML seed file.
//
//	listings:
//	  - location: Downtown
//	    type: Apartment
//	    price: "$300,000"
//	    size: 80 m²
type seedFile struct {
	Listings []*models.RawProperty `yaml:"listings"`
}

// YAMLSource reads human-typed seed records from a YAML file and cleans them.
type YAMLSource struct {
	path    string
	cleaner *services.Cleaner
}

func NewYAMLSource(path string, cleaner *services.Cleaner) *YAMLSource {
	return &YAMLSource{path: path, cleaner: cleaner}
}

func (y *YAMLSource) Load(_ context.Context) ([]models.Property, error) {
	b, err := os.ReadFile(y.path)
	if err != nil {
		return nil, fmt.Errorf("yaml: read %q: %w", y.path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("yaml: parse %q: %w", y.path, err)
	}
	return y.cleaner.Clean(f.Listings), nil
}

func (y *YAMLSource) Close() error { return nil }
