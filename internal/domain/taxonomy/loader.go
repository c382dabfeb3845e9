package taxonomy

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// document is the on-disk shape of a taxonomy file:
//
//	awards:
//	  - key: leadership
//	    display_name: Internationalization (IZN) Leadership Award
//	    criteria:
//	      - name: Lead with Purpose
//	        keywords: [purpose, vision]
type document struct {
	Awards []Award `koanf:"awards"`
}

// LoadFile reads a YAML taxonomy and validates it.
func LoadFile(path string) (*Taxonomy, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", path, err)
	}
	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode taxonomy %s: %w", path, err)
	}
	return New(doc.Awards)
}

// Resolve returns the taxonomy at path, or the built-in one when path is empty.
func Resolve(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
