// Package config reads the YAML file that lays out a run's barcode sets.
package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/shenwei356/xopen"
	"gopkg.in/yaml.v3"

	"github.com/noamteyssier/pipspeak/internal/barcode"
)

var ErrMissingField = errors.New("missing config field")

// Config names the four barcode files and the spacers that
// follow the first three.
type Config struct {
	Barcodes Barcodes `yaml:"barcodes"`
	Spacers  Spacers  `yaml:"spacers"`
}

type Barcodes struct {
	BC1 string `yaml:"bc1"`
	BC2 string `yaml:"bc2"`
	BC3 string `yaml:"bc3"`
	BC4 string `yaml:"bc4"`
}

// Spacers are pointers so that an explicit empty spacer is told apart from
// a missing one.
type Spacers struct {
	S1 *string `yaml:"s1"`
	S2 *string `yaml:"s2"`
	S3 *string `yaml:"s3"`
}

// ReadFile reads a config from a plain or compressed file.
func ReadFile(filename string) (*Config, error) {
	fh, err := xopen.Ropen(filename)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	c, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// Read decodes and validates a config. Unknown keys are an error.
func Read(r io.Reader) (*Config, error) {
	c := Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: barcodes", ErrMissingField)
		}
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	for _, f := range []struct {
		key   string
		value string
	}{
		{"barcodes.bc1", c.Barcodes.BC1},
		{"barcodes.bc2", c.Barcodes.BC2},
		{"barcodes.bc3", c.Barcodes.BC3},
		{"barcodes.bc4", c.Barcodes.BC4},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.key)
		}
	}
	for _, f := range []struct {
		key   string
		value *string
	}{
		{"spacers.s1", c.Spacers.S1},
		{"spacers.s2", c.Spacers.S2},
		{"spacers.s3", c.Spacers.S3},
	} {
		if f.value == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, f.key)
		}
	}
	return nil
}

// Paths returns the barcode files in stage order.
func (c *Config) Paths() [4]string {
	return [4]string{c.Barcodes.BC1, c.Barcodes.BC2, c.Barcodes.BC3, c.Barcodes.BC4}
}

// SpacerSeqs returns the spacer of each set in stage order; the last set has none.
func (c *Config) SpacerSeqs() [4]barcode.Spacer {
	var out [4]barcode.Spacer
	for i, s := range []*string{c.Spacers.S1, c.Spacers.S2, c.Spacers.S3} {
		if s != nil {
			out[i] = barcode.Spacer(*s)
		}
	}
	return out
}

// LoadSets loads the four barcode sets, each with its spacer appended.
func (c *Config) LoadSets(exact bool) ([4]*barcode.Set, error) {
	var sets [4]*barcode.Set
	spacers := c.SpacerSeqs()
	for i, path := range c.Paths() {
		set, err := barcode.Load(path, spacers[i], exact)
		if err != nil {
			return sets, fmt.Errorf("bc%d: %w", i+1, err)
		}
		sets[i] = set
	}
	return sets, nil
}
