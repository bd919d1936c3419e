package convert

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SampleData mirrors §6's Sample Data JSON: static_data is a flat
// name→number map, dynamic_data maps an event type to its ordered list
// of instances, each a case_name→number map.
type SampleData struct {
	Static  map[string]float64              `json:"static_data" yaml:"static_data"`
	Dynamic map[string][]map[string]float64 `json:"dynamic_data" yaml:"dynamic_data"`
}

// ConvertSampleData parses Sample Data JSON into the maps
// internal/evaluator.Evaluate expects directly.
func ConvertSampleData(raw []byte) (SampleData, error) {
	var sd SampleData
	if err := json.Unmarshal(raw, &sd); err != nil {
		return SampleData{}, errors.Wrap(err, "parsing sample data json")
	}
	return sd, nil
}

// ConvertSampleDataYAML parses a YAML rendering of the same shape, for
// hand-written fixtures where comments make the data maintainable. The
// wire format exchanged with the core stays JSON; this is a convenience
// for test/golden authoring only.
func ConvertSampleDataYAML(raw []byte) (SampleData, error) {
	var sd SampleData
	if err := yaml.Unmarshal(raw, &sd); err != nil {
		return SampleData{}, errors.Wrap(err, "parsing sample data yaml")
	}
	return sd, nil
}
