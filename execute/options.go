package execute

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExecOptions is the executor's per-Glue-handle configuration, modeled on
// the conventional database.ParseGeneratorConfig: a YAML document decoded
// with KnownFields so a typo'd key is a load error rather than a
// silently-ignored default.
type ExecOptions struct {
	// Autocommit is the default transaction mode for a statement executed
	// with no active BEGIN.
	Autocommit bool
	// Targets restricts SHOW TABLES and GLUE_TABLES/GLUE_TABLE_COLUMNS to
	// the named tables; empty means every table the storage advertises.
	Targets []string
}

// DefaultExecOptions matches the façade's zero-config behavior: autocommit
// on, every table visible.
func DefaultExecOptions() ExecOptions {
	return ExecOptions{Autocommit: true}
}

// ParseExecOptionsString decodes a YAML options document from a string.
func ParseExecOptionsString(yamlString string) (ExecOptions, error) {
	if yamlString == "" {
		return DefaultExecOptions(), nil
	}
	return parseExecOptionsFromBytes([]byte(yamlString))
}

// ParseExecOptions reads and decodes a YAML options document from a file.
func ParseExecOptions(configFile string) (ExecOptions, error) {
	if configFile == "" {
		return DefaultExecOptions(), nil
	}
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return ExecOptions{}, err
	}
	return parseExecOptionsFromBytes(buf)
}

func parseExecOptionsFromBytes(buf []byte) (ExecOptions, error) {
	var doc struct {
		Autocommit bool   `yaml:"autocommit"`
		Targets    string `yaml:"targets"`
	}

	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return ExecOptions{}, err
	}

	opts := ExecOptions{Autocommit: doc.Autocommit}
	if doc.Targets != "" {
		opts.Targets = strings.Split(strings.Trim(doc.Targets, "\n"), "\n")
	}
	return opts, nil
}
