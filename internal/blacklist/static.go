package blacklist

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticStore serves a fixed set of entries from memory.
type StaticStore struct {
	entries []Entry
}

func NewStaticStore(entries []Entry) *StaticStore {
	return &StaticStore{entries: append([]Entry(nil), entries...)}
}

func (s *StaticStore) Entries(context.Context) ([]Entry, error) {
	return append([]Entry(nil), s.entries...), nil
}

// File is the on-disk layout of a blacklist file.
//
//	entries:
//	  - division: north
//	    kind: group
//	    target_id: 123
//	    name: Raiders
//	    reason: hostile group
type File struct {
	Entries []Entry `yaml:"entries"`
}

// LoadFile reads a YAML blacklist file into a StaticStore.
func LoadFile(path string) (*StaticStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse blacklist file %s: %w", path, err)
	}
	if err := Validate(f.Entries); err != nil {
		return nil, fmt.Errorf("blacklist file %s: %w", path, err)
	}
	return NewStaticStore(f.Entries), nil
}
