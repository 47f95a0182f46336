package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Write encodes c as YAML in the same shape Load reads.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
