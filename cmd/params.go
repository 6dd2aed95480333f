package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadParams overlays a YAML parameter file onto dst (a parameter struct
// pre-filled with defaults). Strict field checking: typos in parameter
// names must cause errors rather than silently keeping the default.
func loadParams(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read parameter file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("parse parameter file %s: %w", path, err)
	}
	return nil
}

// parseSeed parses a comma-separated six-word package seed.
func parseSeed(s string) ([6]uint64, error) {
	var seed [6]uint64
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return seed, fmt.Errorf("seed must have six comma-separated words, have %d", len(parts))
	}
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return seed, fmt.Errorf("seed word %d: %w", i, err)
		}
		seed[i] = v
	}
	return seed, nil
}
