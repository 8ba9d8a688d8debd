package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ruleSet is one immutable, fully-parsed generation of the rule file.
// Readers always see a complete set, never a partial reload.
type ruleSet struct {
	rules   []Rule
	modTime time.Time
}

// Store owns the rule file and hands out immutable snapshots. Reload swaps
// the active set atomically when the file's modification time changes;
// reload failures keep the previous set.
type Store struct {
	path   string
	log    zerolog.Logger
	active atomic.Pointer[ruleSet]
}

// NewStore loads the rule file at path. A missing or unparsable file is not
// fatal: the store starts empty and picks the file up on a later reload.
func NewStore(path string, log zerolog.Logger) *Store {
	s := &Store{path: path, log: log}
	s.active.Store(&ruleSet{})
	if err := s.reload(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("rules: initial load failed, starting empty")
	}
	return s
}

// Rules returns the active rule set. The returned slice must not be mutated.
func (s *Store) Rules() []Rule {
	return s.active.Load().rules
}

// Match evaluates the active rule set against the text.
func (s *Store) Match(text string) *Outcome {
	return Match(s.Rules(), text)
}

// Poll re-reads the rule file if its modification time changed since the
// last load. Intended to be driven by a periodic job.
func (s *Store) Poll() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}
	if info.ModTime().Equal(s.active.Load().modTime) {
		return
	}
	if err := s.reload(); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("rules: reload failed, keeping previous set")
	}
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read rule file: %w", err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat rule file: %w", err)
	}

	parsed, skipped, err := Parse(data, filepath.Ext(s.path))
	if err != nil {
		return err
	}

	s.active.Store(&ruleSet{rules: parsed, modTime: info.ModTime()})
	evt := s.log.Info().Str("path", s.path).Int("rules", len(parsed))
	if skipped > 0 {
		evt = evt.Int("skipped", skipped)
	}
	evt.Msg("rules: loaded")
	return nil
}

// Parse decodes a rule list from JSON or YAML (chosen by file extension) and
// validates each rule. Invalid rules are skipped, not fatal, so one bad
// entry cannot take down the whole file.
func Parse(data []byte, ext string) (valid []Rule, skipped int, err error) {
	var raw []Rule
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, 0, fmt.Errorf("parse JSON rules: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, 0, fmt.Errorf("parse YAML rules: %w", err)
		}
	default:
		return nil, 0, fmt.Errorf("unsupported rule file format %q", ext)
	}

	valid = make([]Rule, 0, len(raw))
	for i := range raw {
		if vErr := raw[i].validate(); vErr != nil {
			skipped++
			continue
		}
		valid = append(valid, raw[i])
	}
	return valid, skipped, nil
}
