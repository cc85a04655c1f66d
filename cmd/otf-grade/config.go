package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//
// configParser accepts either json or yaml config files,
// a document starting with { is treated as json.
//
func configParser(r io.Reader, set func(name, value string) error) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "cannot read config file")
	}
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
		return ff.JSONParser(bytes.NewReader(b), set)
	}
	return yamlParser(bytes.NewReader(b), set)
}

//
// yamlParser sets flags from the top level keys of a
// yaml document, list values are joined with commas.
//
func yamlParser(r io.Reader, set func(name, value string) error) error {
	var m map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrap(err, "cannot parse yaml config")
	}

	for name, val := range m {
		var value string
		switch v := val.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			value = strings.Join(parts, ",")
		default:
			value = fmt.Sprint(v)
		}
		if err := set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// flags registered under two names
var flagAliases = map[string]string{
	"roster_csv_data_file": "r",
	"r":                    "roster_csv_data_file",
	"grade_csv_data_file":  "g",
	"g":                    "grade_csv_data_file",
}

//
// commandLineFirst stops a config file from setting a flag whose alias
// was already given on the command line. ff only checks the name the
// config file uses.
//
func commandLineFirst(fs *flag.FlagSet, parser func(io.Reader, func(string, string) error) error) func(io.Reader, func(string, string) error) error {
	return func(r io.Reader, set func(name, value string) error) error {
		// only command line flags have been set when the config file is read
		given := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

		return parser(r, func(name, value string) error {
			if alias, ok := flagAliases[name]; ok && given[alias] {
				return nil
			}
			return set(name, value)
		})
	}
}
