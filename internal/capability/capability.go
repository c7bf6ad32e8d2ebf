// Package capability computes which optional features are usable in the
// current environment. The result is computed once at startup and handed to
// the components that need it.
package capability

import (
	"github.com/atotto/clipboard"

	"github.com/xxxsen/modslug/internal/config"
)

// Set lists the optional features available for one run.
type Set struct {
	Registry     bool
	Clipboard    bool
	ManifestTOML bool
}

// Detect derives the capability set from the configuration, the --offline
// switch and the host environment.
func Detect(cfg *config.Config, offline bool) Set {
	return Set{
		Registry:     !offline && !cfg.Registry.Disabled && cfg.Registry.Host != "",
		Clipboard:    !clipboard.Unsupported,
		ManifestTOML: !cfg.Manifest.DisableTOML,
	}
}

// Warnings returns one message per missing capability.
func (s Set) Warnings() []string {
	var rs []string
	if !s.Registry {
		rs = append(rs, "Modrinth lookup is disabled, only internal mod IDs will be listed (these may not be usable as slugs)")
	}
	if !s.Clipboard {
		rs = append(rs, "no clipboard utility found, copy to clipboard is not available")
	}
	if !s.ManifestTOML {
		rs = append(rs, "TOML manifests are disabled, META-INF/mods.toml (Forge/NeoForge) will not be read")
	}
	return rs
}
