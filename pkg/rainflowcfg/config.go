// Package rainflowcfg loads and saves rainflow.Config from/to YAML files,
// the ambient configuration concern the spec treats as a CLI/host binding
// rather than part of the counting engine itself.
package rainflowcfg

import (
	"fmt"
	"os"

	"github.com/ja7ad/rainflow/pkg/class"
	"github.com/ja7ad/rainflow/pkg/rainflow"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape: flat, with string names for the
// enumerations so hand-written config files stay readable.
type File struct {
	ClassOffset float64 `yaml:"class_offset"`
	ClassWidth  float64 `yaml:"class_width"`
	ClassCount  int     `yaml:"class_count"`

	Hysteresis float64 `yaml:"hysteresis"`

	WohlerSD    float64 `yaml:"wohler_sd"`
	WohlerND    float64 `yaml:"wohler_nd"`
	WohlerK     float64 `yaml:"wohler_k"`
	WohlerK2    float64 `yaml:"wohler_k2"`
	WohlerOmega float64 `yaml:"wohler_omega"`

	CountMatrix bool `yaml:"count_matrix"`
	CountRP     bool `yaml:"count_range_pair"`
	CountLCUp   bool `yaml:"count_level_crossing_up"`
	CountLCDn   bool `yaml:"count_level_crossing_down"`
	EnforceMargin bool `yaml:"enforce_margin"`

	Method  string `yaml:"method"`   // "none" | "4ptm" | "hcm"
	Residual string `yaml:"residual"` // "none" | "ignore" | "discard" | "halfcycles" | "fullcycles" | "clormann_seeger" | "din45667" | "repeated"
	Spread  string `yaml:"spread"`   // "none" | "half23" | "ramp_amplitude23" | "transient23" | "transient23c"

	FullInc uint64 `yaml:"full_inc"`
	HalfInc uint64 `yaml:"half_inc"`

	EnableDamageHistory bool `yaml:"enable_damage_history"`
	EnableTPStore       bool `yaml:"enable_tp_store"`
	TPCapHint           int  `yaml:"tp_cap_hint"`
}

// Load reads a YAML config file and resolves it into a rainflow.Config.
func Load(path string) (rainflow.Config, rainflow.ResidualMethod, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return rainflow.Config{}, 0, fmt.Errorf("rainflowcfg.Load: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return rainflow.Config{}, 0, fmt.Errorf("rainflowcfg.Load: %w", err)
	}
	return f.resolve()
}

// Save serializes a Config/ResidualMethod pair back into the YAML shape.
func Save(path string, cfg rainflow.Config, residual rainflow.ResidualMethod) error {
	f := File{
		ClassOffset:         cfg.Class.Offset,
		ClassWidth:          cfg.Class.Width,
		ClassCount:          cfg.Class.Count,
		Hysteresis:          cfg.Hysteresis,
		WohlerSD:            cfg.Wohler.SD,
		WohlerND:            cfg.Wohler.ND,
		WohlerK:             cfg.Wohler.K,
		WohlerK2:            cfg.Wohler.K2,
		WohlerOmega:         cfg.Wohler.Omega,
		CountMatrix:         cfg.Flags.Has(rainflow.FlagCountMatrix),
		CountRP:             cfg.Flags.Has(rainflow.FlagCountRP),
		CountLCUp:           cfg.Flags.Has(rainflow.FlagCountLCUp),
		CountLCDn:           cfg.Flags.Has(rainflow.FlagCountLCDn),
		EnforceMargin:       cfg.Flags.Has(rainflow.FlagEnforceMargin),
		Method:              methodName(cfg.Method),
		Residual:            residualName(residual),
		Spread:              spreadName(cfg.Spread),
		FullInc:             cfg.FullInc,
		HalfInc:             cfg.HalfInc,
		EnableDamageHistory: cfg.EnableDamageHistory,
		EnableTPStore:       cfg.EnableTPStore,
		TPCapHint:           cfg.TPCapHint,
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("rainflowcfg.Save: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func (f File) resolve() (rainflow.Config, rainflow.ResidualMethod, error) {
	method, err := parseMethod(f.Method)
	if err != nil {
		return rainflow.Config{}, 0, err
	}
	residual, err := parseResidual(f.Residual)
	if err != nil {
		return rainflow.Config{}, 0, err
	}
	spread, err := parseSpread(f.Spread)
	if err != nil {
		return rainflow.Config{}, 0, err
	}

	var flags rainflow.Flags
	if f.CountMatrix {
		flags |= rainflow.FlagCountMatrix
	}
	if f.CountRP {
		flags |= rainflow.FlagCountRP
	}
	if f.CountLCUp {
		flags |= rainflow.FlagCountLCUp
	}
	if f.CountLCDn {
		flags |= rainflow.FlagCountLCDn
	}
	if f.EnforceMargin {
		flags |= rainflow.FlagEnforceMargin
	}

	cfg := rainflow.Config{
		Class: class.Params{
			Offset: f.ClassOffset,
			Width:  f.ClassWidth,
			Count:  f.ClassCount,
		},
		Hysteresis: f.Hysteresis,
		Wohler: rainflow.WohlerCurve{
			SD: f.WohlerSD, ND: f.WohlerND, K: f.WohlerK, K2: f.WohlerK2, Omega: f.WohlerOmega,
		},
		Flags:               flags,
		Method:              method,
		Spread:              spread,
		FullInc:             f.FullInc,
		HalfInc:             f.HalfInc,
		EnableDamageHistory: f.EnableDamageHistory,
		EnableTPStore:       f.EnableTPStore,
		TPCapHint:           f.TPCapHint,
	}
	return cfg, residual, nil
}

func parseMethod(s string) (rainflow.Method, error) {
	switch s {
	case "", "none":
		return rainflow.MethodNone, nil
	case "4ptm":
		return rainflow.MethodFourPoint, nil
	case "hcm":
		return rainflow.MethodHCM, nil
	default:
		return 0, fmt.Errorf("rainflowcfg: unknown method %q", s)
	}
}

func methodName(m rainflow.Method) string {
	switch m {
	case rainflow.MethodFourPoint:
		return "4ptm"
	case rainflow.MethodHCM:
		return "hcm"
	default:
		return "none"
	}
}

func parseResidual(s string) (rainflow.ResidualMethod, error) {
	switch s {
	case "", "none":
		return rainflow.ResidualNone, nil
	case "ignore":
		return rainflow.ResidualIgnore, nil
	case "discard":
		return rainflow.ResidualDiscard, nil
	case "halfcycles":
		return rainflow.ResidualHalfCycles, nil
	case "fullcycles":
		return rainflow.ResidualFullCycles, nil
	case "clormann_seeger":
		return rainflow.ResidualClormannSeeger, nil
	case "din45667":
		return rainflow.ResidualRPDIN45667, nil
	case "repeated":
		return rainflow.ResidualRepeated, nil
	default:
		return 0, fmt.Errorf("rainflowcfg: unknown residual method %q", s)
	}
}

func residualName(m rainflow.ResidualMethod) string {
	switch m {
	case rainflow.ResidualIgnore:
		return "ignore"
	case rainflow.ResidualDiscard:
		return "discard"
	case rainflow.ResidualHalfCycles:
		return "halfcycles"
	case rainflow.ResidualFullCycles:
		return "fullcycles"
	case rainflow.ResidualClormannSeeger:
		return "clormann_seeger"
	case rainflow.ResidualRPDIN45667:
		return "din45667"
	case rainflow.ResidualRepeated:
		return "repeated"
	default:
		return "none"
	}
}

func parseSpread(s string) (rainflow.SpreadMode, error) {
	switch s {
	case "", "none":
		return rainflow.SpreadNone, nil
	case "half23":
		return rainflow.SpreadHalf23, nil
	case "ramp_amplitude23":
		return rainflow.SpreadRampAmplitude23, nil
	case "transient23":
		return rainflow.SpreadTransient23, nil
	case "transient23c":
		return rainflow.SpreadTransient23C, nil
	default:
		return 0, fmt.Errorf("rainflowcfg: unknown spread mode %q", s)
	}
}

func spreadName(m rainflow.SpreadMode) string {
	switch m {
	case rainflow.SpreadHalf23:
		return "half23"
	case rainflow.SpreadRampAmplitude23:
		return "ramp_amplitude23"
	case rainflow.SpreadTransient23:
		return "transient23"
	case rainflow.SpreadTransient23C:
		return "transient23c"
	default:
		return "none"
	}
}
