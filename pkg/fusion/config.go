package fusion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

// The options file mirrors the loose shape web callers send:
//
//	{
//	  "lighting": false | true | {"direction": "top-right", "intensity": 0.4,
//	                              "ground": false | true | {"opacity": 0.3}},
//	  "colorTransfer": false | true | {"strength": 0.8, "stdClamp": [0.9, 1.1]}
//	}
//
// Objects may also carry "enabled": false. Missing keys and fields keep the
// values from DefaultOptions.

type lightingFile struct {
	Enabled         *bool                  `json:"enabled"`
	Direction       *stdimg.LightDirection `json:"direction"`
	Intensity       *float64               `json:"intensity"`
	Softness        *float64               `json:"softness"`
	ShadowIntensity *float64               `json:"shadowIntensity"`
	Ground          json.RawMessage        `json:"ground"`
}

type groundFile struct {
	Enabled    *bool    `json:"enabled"`
	Opacity    *float64 `json:"opacity"`
	WidthScale *float64 `json:"widthScale"`
	HeightPx   *float64 `json:"heightPx"`
	OffsetY    *float64 `json:"offsetY"`
}

type colorTransferFile struct {
	Enabled            *bool       `json:"enabled"`
	Strength           *float64    `json:"strength"`
	StdClamp           *[2]float64 `json:"stdClamp"`
	PreserveHighlights *bool       `json:"preserveHighlights"`
}

type optionsFile struct {
	Lighting      json.RawMessage `json:"lighting"`
	ColorTransfer json.RawMessage `json:"colorTransfer"`
}

// ParseOptions decodes a JSON options document on top of DefaultOptions and
// validates the result.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	var f optionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	var err error
	if opts.Lighting, err = parseLighting(f.Lighting, opts.Lighting); err != nil {
		return Options{}, err
	}
	if opts.ColorTransfer, err = parseColorTransfer(f.ColorTransfer, opts.ColorTransfer); err != nil {
		return Options{}, err
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadOptionsFile reads and parses a JSON options file.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	opts, err := ParseOptions(data)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// toggle classifies a raw value as absent, a boolean, or an object.
// present is false for a missing key or null.
func toggle(raw json.RawMessage) (present, enabled, object bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, false, false, nil
	}
	switch raw[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return false, false, false, err
		}
		return true, b, false, nil
	case '{':
		return true, true, true, nil
	}
	return false, false, false, fmt.Errorf("expected a boolean or an object, got %s", raw)
}

func parseLighting(raw json.RawMessage, def *LightingConfig) (*LightingConfig, error) {
	present, enabled, object, err := toggle(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: lighting: %v", ErrInvalidOptions, err)
	}
	if !present {
		return def, nil
	}
	if !enabled {
		return nil, nil
	}
	out := &LightingConfig{Lighting: stdimg.DefaultLighting()}
	if !object {
		return out, nil
	}
	var f lightingFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: lighting: %v", ErrInvalidOptions, err)
	}
	if f.Enabled != nil && !*f.Enabled {
		return nil, nil
	}
	setFloat(&out.Intensity, f.Intensity)
	setFloat(&out.Softness, f.Softness)
	setFloat(&out.ShadowIntensity, f.ShadowIntensity)
	if f.Direction != nil {
		out.Direction = *f.Direction
	}
	if out.Ground, err = parseGround(f.Ground); err != nil {
		return nil, err
	}
	return out, nil
}

func parseGround(raw json.RawMessage) (*GroundShadowConfig, error) {
	present, enabled, object, err := toggle(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: ground: %v", ErrInvalidOptions, err)
	}
	if !present || !enabled {
		return nil, nil
	}
	g := DefaultGroundShadow()
	if !object {
		return &g, nil
	}
	var f groundFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: ground: %v", ErrInvalidOptions, err)
	}
	if f.Enabled != nil && !*f.Enabled {
		return nil, nil
	}
	setFloat(&g.Opacity, f.Opacity)
	setFloat(&g.WidthScale, f.WidthScale)
	setFloat(&g.HeightPx, f.HeightPx)
	setFloat(&g.OffsetY, f.OffsetY)
	return &g, nil
}

func parseColorTransfer(raw json.RawMessage, def *stdimg.ColorTransfer) (*stdimg.ColorTransfer, error) {
	present, enabled, object, err := toggle(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: colorTransfer: %v", ErrInvalidOptions, err)
	}
	if !present {
		return def, nil
	}
	if !enabled {
		return nil, nil
	}
	ct := stdimg.DefaultColorTransfer()
	if !object {
		return &ct, nil
	}
	var f colorTransferFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: colorTransfer: %v", ErrInvalidOptions, err)
	}
	if f.Enabled != nil && !*f.Enabled {
		return nil, nil
	}
	setFloat(&ct.Strength, f.Strength)
	if f.StdClamp != nil {
		ct.StdClamp = *f.StdClamp
	}
	if f.PreserveHighlights != nil {
		ct.PreserveHighlights = *f.PreserveHighlights
	}
	return &ct, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
