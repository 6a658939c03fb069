package resources

import (
	"embed"
	"fmt"
	"sync"

	"desktimer/internal/core/model"

	"fyne.io/fyne/v2"
	"gopkg.in/yaml.v3"
)

const (
	iconFile    = "icon.svg"
	presetsFile = "presets.yaml"
)

//go:embed icon.svg presets.yaml
var assetFS embed.FS

var resourceCache sync.Map

var presetsOnce = sync.OnceValues(loadPresets)

// Icon returns the application and tray icon.
func Icon() (fyne.Resource, error) {
	return loadResource(assetFS, iconFile, &resourceCache)
}

// MustIcon returns the icon or panics on error.
func MustIcon() fyne.Resource {
	resource, err := Icon()
	if err != nil {
		panic(err)
	}
	return resource
}

// Presets returns the built-in duration presets in menu order.
func Presets() ([]model.Preset, error) {
	presets, err := presetsOnce()
	if err != nil {
		return nil, err
	}
	return append([]model.Preset(nil), presets...), nil
}

// FindPreset looks a preset up by name among presets.
func FindPreset(presets []model.Preset, name string) (model.Preset, bool) {
	for _, preset := range presets {
		if preset.Name == name {
			return preset, true
		}
	}
	return model.Preset{}, false
}

func loadPresets() ([]model.Preset, error) {
	data, err := assetFS.ReadFile(presetsFile)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", presetsFile, err)
	}
	var file struct {
		Presets []model.Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	return file.Presets, nil
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
