// Package theme describes the builder's light and dark appearance as a
// go-theme manifest and resolves a variant into the renderer configuration the
// HTML templates consume.
package theme

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

const (
	// Name is the manifest name of the built-in theme.
	Name = "formbuilder"
	// VariantLight is the default variant and uses the base tokens.
	VariantLight = "light"
	// VariantDark overrides the base tokens for dark mode.
	VariantDark = "dark"
	// StylesheetAsset keys the stylesheet in the manifest assets.
	StylesheetAsset = "stylesheet"
)

// Manifest returns the built-in manifest. assetPrefix is the URL prefix the
// stylesheet is served under.
func Manifest(assetPrefix string) *gotheme.Manifest {
	if assetPrefix == "" {
		assetPrefix = "/assets"
	}
	return &gotheme.Manifest{
		Name:    Name,
		Version: "1.0.0",
		Tokens: map[string]string{
			"fb-background":  "#f5f6f8",
			"fb-surface":     "#ffffff",
			"fb-text":        "#1f2933",
			"fb-muted":       "#616e7c",
			"fb-border":      "#d9dde3",
			"fb-accent":      "#2563eb",
			"fb-accent-text": "#ffffff",
			"fb-danger":      "#c81e1e",
			"fb-success":     "#057a55",
		},
		Assets: gotheme.Assets{
			Prefix: assetPrefix,
			Files: map[string]string{
				StylesheetAsset: "formbuilder.css",
			},
		},
		Variants: map[string]gotheme.Variant{
			VariantDark: {
				Tokens: map[string]string{
					"fb-background":  "#111827",
					"fb-surface":     "#1f2937",
					"fb-text":        "#f3f4f6",
					"fb-muted":       "#9ca3af",
					"fb-border":      "#374151",
					"fb-accent":      "#60a5fa",
					"fb-accent-text": "#111827",
					"fb-danger":      "#f87171",
					"fb-success":     "#34d399",
				},
			},
		},
	}
}

// Selector resolves manifests by name and variant.
type Selector struct {
	mu        sync.RWMutex
	manifests map[string]*gotheme.Manifest
	registrar interface {
		Register(*gotheme.Manifest) error
	}
	provider gotheme.ThemeProvider
}

// NewSelector registers manifests. With no arguments the built-in manifest is
// registered under the default asset prefix.
func NewSelector(manifests ...*gotheme.Manifest) (*Selector, error) {
	if len(manifests) == 0 {
		manifests = []*gotheme.Manifest{Manifest("")}
	}
	registry := gotheme.NewRegistry()
	s := &Selector{
		manifests: make(map[string]*gotheme.Manifest, len(manifests)),
		registrar: registry,
		provider:  registry,
	}
	for _, manifest := range manifests {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a manifest.
func (s *Selector) Register(manifest *gotheme.Manifest) error {
	if manifest == nil || manifest.Name == "" {
		return fmt.Errorf("theme: manifest name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.manifests[manifest.Name]; exists {
		return fmt.Errorf("theme: manifest %q already registered", manifest.Name)
	}
	if err := s.registrar.Register(manifest); err != nil {
		return fmt.Errorf("theme: register %q: %w", manifest.Name, err)
	}
	s.manifests[manifest.Name] = manifest
	return nil
}

// Provider exposes the underlying go-theme registry.
func (s *Selector) Provider() gotheme.ThemeProvider { return s.provider }

// Select returns the manifest and variant. An empty name selects the built-in
// theme and an empty variant selects light.
func (s *Selector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	if name == "" {
		name = Name
	}
	variant = NormalizeVariant(variant)

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("theme: manifest %q not found", name)
	}
	if variant != VariantLight {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme: variant %q not found in %q", variant, name)
		}
	}
	return &gotheme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Resolve selects a variant and builds its renderer configuration.
func (s *Selector) Resolve(name, variant string) (*gotheme.RendererConfig, error) {
	selection, err := s.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection), nil
}

// NormalizeVariant maps user input onto a variant name.
func NormalizeVariant(variant string) string {
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		return VariantLight
	}
	return variant
}

// Toggle flips between light and dark.
func Toggle(variant string) string {
	if NormalizeVariant(variant) == VariantDark {
		return VariantLight
	}
	return VariantDark
}

// RendererConfig merges the variant overrides onto the base manifest and
// derives CSS custom properties from the tokens.
func RendererConfig(selection *gotheme.Selection) *gotheme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := merge(manifest.Tokens, variant.Tokens)
	partials := merge(manifest.Templates, variant.Templates)
	files := merge(manifest.Assets.Files, variant.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	return &gotheme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		CSSVars:  cssVars(tokens),
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}
}

// CSSVarsStyle renders vars as a sorted declaration list for a style attribute.
func CSSVarsStyle(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

func cssVars(tokens map[string]string) map[string]string {
	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}
	return vars
}

func merge(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
