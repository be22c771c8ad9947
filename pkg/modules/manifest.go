package modules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fuzeworks/fuzeworks/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// IsManifestFile reports whether path has a manifest extension.
func IsManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}

// Decode parses a manifest based on the extension of path. The module name
// defaults to the file name without extension.
func Decode(path string, data []byte) (types.Module, error) {
	var m types.Module
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".json":
		err = json.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	default:
		return m, fmt.Errorf("unsupported manifest extension: %s", ext)
	}
	if err != nil {
		return m, fmt.Errorf("decode manifest %s: %w", filepath.Base(path), err)
	}
	if m.Name == "" {
		base := filepath.Base(path)
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return m, nil
}

// LoadDir reads every manifest in dir (non-recursive) and returns them sorted
// by module name. Two manifests declaring the same name are an error.
func LoadDir(dir string) ([]types.Module, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	seen := make(map[string]string)
	var manifests []types.Module
	for _, e := range entries {
		if e.IsDir() || !IsManifestFile(e.Name()) {
			continue
		}
		p := filepath.Join(abs, e.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		m, err := Decode(p, data)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("duplicate module %q in %s and %s", m.Name, prev, e.Name())
		}
		seen[m.Name] = e.Name()
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Name < manifests[j].Name })
	return manifests, nil
}

// ApplyConfig merges per-module overrides into the manifests' Config maps.
// Override keys win over the manifest's own.
func ApplyConfig(manifests []types.Module, overrides map[string]map[string]any) []types.Module {
	if len(overrides) == 0 {
		return manifests
	}
	out := make([]types.Module, len(manifests))
	for i, m := range manifests {
		over, ok := overrides[m.Name]
		if !ok {
			out[i] = m
			continue
		}
		merged := make(map[string]any, len(m.Config)+len(over))
		for k, v := range m.Config {
			merged[k] = v
		}
		for k, v := range over {
			merged[k] = v
		}
		m.Config = merged
		out[i] = m
	}
	return out
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
