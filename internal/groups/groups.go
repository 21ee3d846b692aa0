// Package groups loads the tracked article list: groups of title aliases
// that refer to the same subject.
package groups

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/groan-lab/groan/internal/core/title"
	"gopkg.in/yaml.v3"
)

// Group is one set of title aliases, in file order.
type Group []string

type yamlFile struct {
	Groups []Group `yaml:"groups"`
}

// Load reads a groups file. Files ending in .yaml or .yml are decoded as
// YAML; anything else uses the line format read by Parse.
func Load(path string) ([]Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open groups file: %w", err)
	}
	defer f.Close()

	var gs []Group
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		gs, err = parseYAML(f)
	default:
		gs, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gs, nil
}

// Parse reads one comma-separated group per line. Lines starting with '#'
// and blank lines are skipped; whitespace around each title is trimmed.
// Commas always separate titles, there is no quoting.
func Parse(r io.Reader) ([]Group, error) {
	var gs []Group

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		g := clean(strings.Split(line, ","))
		if len(g) == 0 {
			return nil, fmt.Errorf("line %d: group has no titles", lineNo)
		}
		gs = append(gs, g)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return gs, nil
}

func parseYAML(r io.Reader) ([]Group, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	gs := make([]Group, 0, len(doc.Groups))
	for i, raw := range doc.Groups {
		g := clean(raw)
		if len(g) == 0 {
			return nil, fmt.Errorf("group %d has no titles", i)
		}
		gs = append(gs, g)
	}
	return gs, nil
}

func clean(raw []string) Group {
	g := make(Group, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			g = append(g, t)
		}
	}
	return g
}

// Titles flattens gs in order, dropping titles already seen under the same
// normalized form.
func Titles(gs []Group) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range gs {
		for _, t := range g {
			key := title.Normalize(t)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
