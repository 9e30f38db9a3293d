package config

import (
	"strings"
)

// listFlag collects repeated string flag values, and unmarshals from a
// YAML sequence.
type listFlag []string

func (f *listFlag) String() string {
	return strings.Join(*f, " ")
}

func (f *listFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func (f *listFlag) UnmarshalYAML(unmarshal func(any) error) error {
	var values []string
	if err := unmarshal(&values); err != nil {
		return err
	}
	*f = values
	return nil
}
