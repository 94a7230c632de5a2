// Copyright 2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package collection

import (
	"fmt"
	"github.com/mitchellh/mapstructure"
	"strings"
)

// DecodeConfig converts a loosely typed dictionary, such as the
// result of decoding a YAML or JSON document, into a Config.  Keys
// use the wire-format snake_case names.  Unknown keys are an error:
// a typo in a configuration file should fail loudly at startup, not
// silently fall back to a default.
func DecodeConfig(dict map[string]interface{}) (Config, error) {
	var (
		cfg      Config
		metadata mapstructure.Metadata
	)
	config := mapstructure.DecoderConfig{
		Result:   &cfg,
		Metadata: &metadata,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(dict)
	}
	if err == nil && len(metadata.Unused) > 0 {
		err = fmt.Errorf("unknown configuration key %q", metadata.Unused[0])
	}
	if err == nil {
		err = cfg.Validate()
	}
	return cfg, err
}

// Match reports whether a record is selected.  This defines the
// reference semantics for Selection; in-process backends call it
// directly, while database backends are expected to translate the
// same rules into their query language.
func (s Selection) Match(rec Record) bool {
	for field, want := range s.Filters {
		value, present := rec[field]
		if !present || FieldString(value) != want {
			return false
		}
	}
	if s.SearchTerm != "" {
		term := strings.ToLower(s.SearchTerm)
		fields := s.SearchFields
		if len(fields) == 0 {
			fields = make([]string, 0, len(rec))
			for field := range rec {
				fields = append(fields, field)
			}
		}
		found := false
		for _, field := range fields {
			value, present := rec[field]
			if !present {
				continue
			}
			if strings.Contains(strings.ToLower(FieldString(value)), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FieldString renders a record field value the way filters and
// searches see it.  Strings pass through; other values use their
// default formatting, so the number 3 matches the filter value "3".
func FieldString(value interface{}) string {
	if s, isString := value.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", value)
}
