package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	listingsKey   = "listings"
	candidatesKey = "candidates"
)

// LoadListings reads listings from the "listings" key of a YAML or JSON file.
func LoadListings(path string) (*Listings, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var items []*Listing
	if err := decode(v.Get(listingsKey), &items); err != nil {
		return nil, fmt.Errorf("decoding listings from %s: %w", path, err)
	}

	validate := validator.New()
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("listing %d in %s is empty", i, path)
		}
		if err := validate.Struct(item); err != nil {
			return nil, fmt.Errorf("listing %d in %s: %w", i, path, err)
		}
	}

	return &Listings{Items: items}, nil
}

// LoadCandidate reads a single candidate profile stored at the top level of a
// YAML or JSON file.
func LoadCandidate(path string) (*Candidate, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var candidate Candidate
	if err := decode(v.AllSettings(), &candidate); err != nil {
		return nil, fmt.Errorf("decoding candidate from %s: %w", path, err)
	}

	if err := validator.New().Struct(&candidate); err != nil {
		return nil, fmt.Errorf("candidate in %s: %w", path, err)
	}

	return &candidate, nil
}

// LoadCandidates reads candidate profiles from the "candidates" key of a YAML
// or JSON file.
func LoadCandidates(path string) ([]*Candidate, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var candidates []*Candidate
	if err := decode(v.Get(candidatesKey), &candidates); err != nil {
		return nil, fmt.Errorf("decoding candidates from %s: %w", path, err)
	}

	validate := validator.New()
	for i, candidate := range candidates {
		if candidate == nil {
			return nil, fmt.Errorf("candidate %d in %s is empty", i, path)
		}
		if err := validate.Struct(candidate); err != nil {
			return nil, fmt.Errorf("candidate %d in %s: %w", i, path, err)
		}
	}

	return candidates, nil
}

func read(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return v, nil
}

// decode is weakly typed so experience may be written as a number or a string.
func decode(input, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           result,
		WeaklyTypedInput: true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}
