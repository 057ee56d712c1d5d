package export

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/sinecheck/internal/model"
)

// WriteJSON writes the analysis as indented JSON.
func WriteJSON(w io.Writer, analysis model.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}

// WriteYAML writes the analysis as a YAML document.
func WriteYAML(w io.Writer, analysis model.Analysis) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(analysis); err != nil {
		return err
	}
	return enc.Close()
}
