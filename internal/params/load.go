package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"worldgen/internal/core"
)

// Load reads a YAML params file. Keys absent from the file keep their
// Default values; unknown keys are rejected. The result is validated.
func Load(path string) (WorldParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldParams{}, fmt.Errorf("read params %s: %w", path, err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return WorldParams{}, fmt.Errorf("params %s: %w", path, err)
	}
	return p, nil
}

// Unmarshal decodes YAML over Default and validates the result.
func Unmarshal(data []byte) (WorldParams, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return WorldParams{}, fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	if err := p.Validate(); err != nil {
		return WorldParams{}, err
	}
	return p, nil
}

// Marshal encodes params as YAML.
func Marshal(p WorldParams) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
