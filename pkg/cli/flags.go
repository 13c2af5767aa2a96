package cli

import (
	"flag"
	"fmt"

	"github.com/Fepozopo/imgfuse/pkg/fusion"
	"github.com/Fepozopo/imgfuse/pkg/stdimg"
)

// optionFlags are the pipeline flags shared by fuse and preview. Only flags
// given on the command line override the options file.
type optionFlags struct {
	fs *flag.FlagSet

	optionsFile string
	noLighting  bool
	noColor     bool

	direction     string
	intensity     float64
	softness      float64
	shadow        float64
	ground        bool
	groundOpacity float64
	groundWidth   float64
	groundHeight  float64
	groundOffset  float64
	strength      float64
	clampLow      float64
	clampHigh     float64
	highlights    bool
}

func newOptionFlags(fs *flag.FlagSet) *optionFlags {
	l := stdimg.DefaultLighting()
	g := fusion.DefaultGroundShadow()
	ct := stdimg.DefaultColorTransfer()
	f := &optionFlags{fs: fs}
	fs.StringVar(&f.optionsFile, "options", "", "JSON options file (default $IMGFUSE_OPTIONS)")
	fs.BoolVar(&f.noLighting, "no-lighting", false, "disable the lighting stage")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colour transfer")
	fs.StringVar(&f.direction, "direction", l.Direction.String(), "light direction: top-left or top-right")
	fs.Float64Var(&f.intensity, "intensity", l.Intensity, "lighting intensity")
	fs.Float64Var(&f.softness, "softness", l.Softness, "lighting falloff as a fraction of the larger side")
	fs.Float64Var(&f.shadow, "shadow", l.ShadowIntensity, "opposite-corner shadow intensity")
	fs.BoolVar(&f.ground, "ground", false, "draw a contact shadow under the subject")
	fs.Float64Var(&f.groundOpacity, "ground-opacity", g.Opacity, "contact shadow opacity")
	fs.Float64Var(&f.groundWidth, "ground-width", g.WidthScale, "contact shadow width relative to the subject")
	fs.Float64Var(&f.groundHeight, "ground-height", g.HeightPx, "contact shadow height in pixels (0 = auto)")
	fs.Float64Var(&f.groundOffset, "ground-offset", g.OffsetY, "contact shadow vertical offset in pixels")
	fs.Float64Var(&f.strength, "strength", ct.Strength, "colour transfer strength 0..1")
	fs.Float64Var(&f.clampLow, "clamp-low", ct.StdClamp[0], "lower bound of the contrast ratio")
	fs.Float64Var(&f.clampHigh, "clamp-high", ct.StdClamp[1], "upper bound of the contrast ratio")
	fs.BoolVar(&f.highlights, "highlights", ct.PreserveHighlights, "weaken colour transfer on highlights")
	return f
}

// options builds the pipeline options: defaults, then the options file,
// then explicitly set flags.
func (f *optionFlags) options(env Env) (fusion.Options, error) {
	opts := fusion.DefaultOptions()
	path := f.optionsFile
	if path == "" {
		path = env.OptionsFile
	}
	if path != "" {
		var err error
		if opts, err = fusion.LoadOptionsFile(path); err != nil {
			return fusion.Options{}, err
		}
	}

	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	lightingFlag := set["direction"] || set["intensity"] || set["softness"] || set["shadow"] ||
		set["ground"] || set["ground-opacity"] || set["ground-width"] || set["ground-height"] || set["ground-offset"]
	if lightingFlag && opts.Lighting == nil {
		opts.Lighting = &fusion.LightingConfig{Lighting: stdimg.DefaultLighting()}
	}
	if l := opts.Lighting; l != nil {
		if set["direction"] {
			d, err := stdimg.ParseLightDirection(f.direction)
			if err != nil {
				return fusion.Options{}, fmt.Errorf("-direction: %w", err)
			}
			l.Direction = d
		}
		setIf(set["intensity"], &l.Intensity, f.intensity)
		setIf(set["softness"], &l.Softness, f.softness)
		setIf(set["shadow"], &l.ShadowIntensity, f.shadow)

		groundFlag := set["ground-opacity"] || set["ground-width"] || set["ground-height"] || set["ground-offset"]
		if set["ground"] && !f.ground {
			l.Ground = nil
		} else if (f.ground || groundFlag) && l.Ground == nil {
			g := fusion.DefaultGroundShadow()
			l.Ground = &g
		}
		if g := l.Ground; g != nil {
			setIf(set["ground-opacity"], &g.Opacity, f.groundOpacity)
			setIf(set["ground-width"], &g.WidthScale, f.groundWidth)
			setIf(set["ground-height"], &g.HeightPx, f.groundHeight)
			setIf(set["ground-offset"], &g.OffsetY, f.groundOffset)
		}
	}

	colorFlag := set["strength"] || set["clamp-low"] || set["clamp-high"] || set["highlights"]
	if colorFlag && opts.ColorTransfer == nil {
		ct := stdimg.DefaultColorTransfer()
		opts.ColorTransfer = &ct
	}
	if ct := opts.ColorTransfer; ct != nil {
		setIf(set["strength"], &ct.Strength, f.strength)
		setIf(set["clamp-low"], &ct.StdClamp[0], f.clampLow)
		setIf(set["clamp-high"], &ct.StdClamp[1], f.clampHigh)
		if set["highlights"] {
			ct.PreserveHighlights = f.highlights
		}
	}

	if f.noLighting {
		opts.Lighting = nil
	}
	if f.noColor {
		opts.ColorTransfer = nil
	}
	if err := opts.Validate(); err != nil {
		return fusion.Options{}, err
	}
	return opts, nil
}

func setIf(ok bool, dst *float64, v float64) {
	if ok {
		*dst = v
	}
}
