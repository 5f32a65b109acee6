package store

import (
	"github.com/oliveagle/jsonpath"
)

// QueryMatch pairs a record with the value its JSONPath expression
// selected.
type QueryMatch struct {
	Record Record `json:"record"`
	Value  any    `json:"value"`
}

// QueryRecords evaluates a JSONPath expression (e.g. "$.name" or
// "$.inventory.03") against every record of a collection and returns
// the records where the lookup succeeds with a non-nil value.
func (s *FileStore) QueryRecords(collection, path string) ([]QueryMatch, error) {
	pattern, err := jsonpath.Compile(path)
	if err != nil {
		return nil, err
	}
	records, err := s.List(collection)
	if err != nil {
		return nil, err
	}
	var matches []QueryMatch
	for _, r := range records {
		value, err := pattern.Lookup(map[string]any(r))
		if err != nil || value == nil {
			continue
		}
		matches = append(matches, QueryMatch{Record: r, Value: value})
	}
	return matches, nil
}
