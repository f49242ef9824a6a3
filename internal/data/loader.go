package data

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/suderio/draconic-rules/internal/rules"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Loader handles reading rule and character documents from an ordered list
// of data directories. Rules found later override rules found earlier.
type Loader struct {
	dataDirs []string
	embedded bool
	log      *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithEmbedded controls whether the compiled-in default rule set is loaded
// before the data directories. It is on by default.
func WithEmbedded(enabled bool) Option {
	return func(l *Loader) { l.embedded = enabled }
}

// WithLogger sets the logger for skipped files and documents.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader initializes a new Data Loader with the given data directory fallback hierarchy
func NewLoader(dataDirs []string, opts ...Option) *Loader {
	l := &Loader{
		dataDirs: dataDirs,
		embedded: true,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadRules reads every rule document: the embedded defaults first, then the
// rules/ directory of each data directory in order. Files inside a directory
// are read in lexical order. Documents that fail to decode are skipped with
// a warning; only I/O errors other than a missing directory are returned.
func (l *Loader) LoadRules() ([]rules.RawRule, error) {
	var out []rules.RawRule

	if l.embedded {
		recs, err := l.loadTree(defaults, "defaults", "embedded")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded rules: %w", err)
		}
		out = append(out, recs...)
	}

	for _, dir := range l.dataDirs {
		root := filepath.Join(dir, "rules")
		recs, err := l.loadTree(os.DirFS(root), ".", root)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules from %s: %w", root, err)
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (l *Loader) loadTree(fsys fs.FS, root, label string) ([]rules.RawRule, error) {
	var out []rules.RawRule
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !isDocument(p) {
			return nil
		}

		source := path.Join(label, strings.TrimPrefix(p, root+"/"))
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		recs, err := DecodeRules(f, path.Ext(p), source)
		if err != nil {
			l.log.Warn("rule document skipped", zap.String("source", source), zap.Error(err))
			return nil
		}
		l.log.Debug("loaded rule document", zap.String("source", source), zap.Int("rules", len(recs)))
		out = append(out, recs...)
		return nil
	})
	return out, err
}

func isDocument(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// DecodeRules decodes the rule records of one document. A document holds a
// single rule, a list of rules, or (YAML only) a stream of either.
func DecodeRules(r io.Reader, ext, source string) ([]rules.RawRule, error) {
	var out []rules.RawRule
	if strings.EqualFold(ext, ".json") {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("failed to decode json rules: %w", err)
			}
		} else {
			var rec rules.RawRule
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("failed to decode json rule: %w", err)
			}
			out = append(out, rec)
		}
		return withSource(out, source), nil
	}

	dec := yaml.NewDecoder(r)
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode yaml rules: %w", err)
		}
		if len(node.Content) == 0 || node.Content[0].Tag == "!!null" {
			continue
		}

		if node.Content[0].Kind == yaml.SequenceNode {
			var recs []rules.RawRule
			if err := node.Decode(&recs); err != nil {
				return nil, fmt.Errorf("failed to decode yaml rule list: %w", err)
			}
			out = append(out, recs...)
			continue
		}
		var rec rules.RawRule
		if err := node.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode yaml rule: %w", err)
		}
		out = append(out, rec)
	}
	return withSource(out, source), nil
}

func withSource(recs []rules.RawRule, source string) []rules.RawRule {
	for i := range recs {
		recs[i].Source = source
	}
	return recs
}

// LoadCharacter reads a character document. ref is either a path to a file
// or a character name looked up in the characters/ directory of each data
// directory.
func (l *Loader) LoadCharacter(ref string) (*Character, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		return decodeCharacterFile(ref)
	}

	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(ref)), " ", "-")
	for _, dir := range l.dataDirs {
		for _, ext := range []string{".yaml", ".yml", ".json"} {
			p := filepath.Join(dir, "characters", name+ext)
			if _, err := os.Stat(p); err == nil {
				return decodeCharacterFile(p)
			}
		}
	}
	return nil, fmt.Errorf("could not find or open character %s in any available data directory", ref)
}

func decodeCharacterFile(p string) (*Character, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open character %s: %w", p, err)
	}
	defer f.Close()

	c, err := DecodeCharacter(f, filepath.Ext(p))
	if err != nil {
		return nil, fmt.Errorf("failed to decode character %s: %w", p, err)
	}
	return c, nil
}

// DecodeCharacter decodes a character document and normalizes it.
func DecodeCharacter(r io.Reader, ext string) (*Character, error) {
	var c Character
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.NewDecoder(r).Decode(&c)
	} else {
		err = yaml.NewDecoder(r).Decode(&c)
	}
	if err != nil {
		return nil, err
	}
	c.Normalize()
	return &c, nil
}
