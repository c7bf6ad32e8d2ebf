package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	FormatFabric   = "fabric"
	FormatQuilt    = "quilt"
	FormatForge    = "forge"
	FormatNeoForge = "neoforge"
)

// format is one known manifest location inside an archive.
type format struct {
	name  string
	path  string
	toml  bool
	parse func(data []byte) (id string, name string, err error)
}

// formats is ordered by priority. The first format yielding an id wins.
var formats = []format{
	{name: FormatFabric, path: "fabric.mod.json", parse: parseFabric},
	{name: FormatQuilt, path: "quilt.mod.json", parse: parseQuilt},
	{name: FormatForge, path: "META-INF/mods.toml", toml: true, parse: parseModsTOML},
	{name: FormatNeoForge, path: "META-INF/neoforge.mods.toml", toml: true, parse: parseModsTOML},
}

var utf8BOM = []byte("\xef\xbb\xbf")

type fabricManifest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func parseFabric(data []byte) (string, string, error) {
	var m fabricManifest
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &m); err != nil {
		return "", "", fmt.Errorf("decode json: %w", err)
	}
	return strings.TrimSpace(m.ID), strings.TrimSpace(m.Name), nil
}

type quiltManifest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	QuiltLoader *struct {
		ID       string `json:"id"`
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	} `json:"quilt_loader"`
}

// parseQuilt reads the flat id/name pair and falls back to the nested
// quilt_loader block used by the Quilt schema.
func parseQuilt(data []byte) (string, string, error) {
	var m quiltManifest
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &m); err != nil {
		return "", "", fmt.Errorf("decode json: %w", err)
	}
	id := strings.TrimSpace(m.ID)
	name := strings.TrimSpace(m.Name)
	if id == "" && m.QuiltLoader != nil {
		id = strings.TrimSpace(m.QuiltLoader.ID)
		if name == "" {
			name = strings.TrimSpace(m.QuiltLoader.Metadata.Name)
		}
	}
	return id, name, nil
}

type modsTOML struct {
	Mods []struct {
		ModID       string `toml:"modId"`
		DisplayName string `toml:"displayName"`
	} `toml:"mods"`
}

func parseModsTOML(data []byte) (string, string, error) {
	var m modsTOML
	if err := toml.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &m); err != nil {
		return "", "", fmt.Errorf("decode toml: %w", err)
	}
	if len(m.Mods) == 0 {
		return "", "", nil
	}
	first := m.Mods[0]
	id := strings.TrimSpace(first.ModID)
	name := strings.TrimSpace(first.DisplayName)
	if name == "" {
		name = id
	}
	return id, name, nil
}
