package board

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func ParseYAML(r io.Reader) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: %w", ErrCannotLoadBoard, err)
	}
	return def, nil
}

func WriteYAML(w io.Writer, def Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return err
	}
	return enc.Close()
}
