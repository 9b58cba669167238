package board

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads a board from disk, choosing the format by extension.
func LoadFile(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %w", ErrCannotLoadBoard, err)
	}
	defer f.Close()
	var def Definition
	if isYAML(path) {
		def, err = ParseYAML(f)
	} else {
		def, err = ParseText(f)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	log.Debug().Str("path", path).Int("beds", len(def.Beds)).Msg("board-loaded")
	return def, nil
}

// SaveFile writes a board to disk, choosing the format by extension.
func SaveFile(path string, def Definition) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if isYAML(path) {
		err = WriteYAML(f, def)
	} else {
		err = WriteText(f, def)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
