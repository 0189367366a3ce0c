// Package yamlutil fills values for unset command line flags from a YAML
// config file.
package yamlutil

import (
	"flag"
	"fmt"

	"gopkg.in/yaml.v1"
)

// SetFlagsFromYaml assigns values from the YAML document in rawYaml to every
// flag in fs that was not given on the command line. Config keys are the
// flag names themselves.
func SetFlagsFromYaml(fs *flag.FlagSet, rawYaml []byte) error {
	return SetFlagsFromYamlKeyed(fs, rawYaml, func(name string) string {
		return name
	})
}

// SetFlagsFromYamlKeyed is SetFlagsFromYaml with a caller-supplied mapping
// from flag name to config key, for config schemas whose keys do not match
// the flag names. The first flag whose configured value fails to parse
// aborts the walk.
func SetFlagsFromYamlKeyed(fs *flag.FlagSet, rawYaml []byte, key func(string) string) error {
	values := make(map[string]string)
	if err := yaml.Unmarshal(rawYaml, values); err != nil {
		return err
	}

	fromCommandLine := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		fromCommandLine[f.Name] = true
	})

	var walkErr error
	fs.VisitAll(func(f *flag.Flag) {
		if walkErr != nil || fromCommandLine[f.Name] {
			return
		}
		v, ok := values[key(f.Name)]
		if !ok {
			return
		}
		if err := fs.Set(f.Name, v); err != nil {
			walkErr = fmt.Errorf("yamlutil: bad value %q for flag -%s: %v", v, f.Name, err)
		}
	})
	return walkErr
}
