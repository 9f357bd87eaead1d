package data

import (
	"fmt"
	"os"

	"github.com/blockfall/server/internal/game"
	"gopkg.in/yaml.v3"
)

// rulesFile mirrors game.Rules for YAML loading. Fields left out of the file
// keep the built-in defaults, so a partial override file is valid.
type rulesFile struct {
	KickOffsets []kickOffset `yaml:"kick_offsets"`
	ScoreTable  []int64      `yaml:"score_table"`

	ComboWindowMS  int64   `yaml:"combo_window_ms"`
	ComboIncrement float64 `yaml:"combo_increment"`

	FlashMS int64 `yaml:"flash_ms"`

	GravityBaseMS  int64 `yaml:"gravity_base_ms"`
	GravityStepMS  int64 `yaml:"gravity_step_ms"`
	GravityFloorMS int64 `yaml:"gravity_floor_ms"`
	SoftDropMS     int64 `yaml:"soft_drop_ms"`

	LinesPerLevel int `yaml:"lines_per_level"`

	DeltaMinMS int64 `yaml:"delta_min_ms"`
	DeltaMaxMS int64 `yaml:"delta_max_ms"`
}

type kickOffset struct {
	DX int `yaml:"dx"`
	DY int `yaml:"dy"`
}

// LoadRules loads rule constants from a YAML file, starting from the built-in
// defaults. A missing file is not an error — the defaults apply unchanged.
func LoadRules(path string) (game.Rules, error) {
	rules := game.DefaultRules()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return rules, fmt.Errorf("read rules %s: %w", path, err)
	}

	f := fileFromRules(rules)
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return rules, fmt.Errorf("parse rules %s: %w", path, err)
	}

	rules = rulesFromFile(f)
	if err := validate(rules); err != nil {
		return game.DefaultRules(), fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

func fileFromRules(r game.Rules) rulesFile {
	f := rulesFile{
		ScoreTable:     append([]int64(nil), r.ScoreTable...),
		ComboWindowMS:  r.ComboWindowMS,
		ComboIncrement: r.ComboIncrement,
		FlashMS:        r.FlashMS,
		GravityBaseMS:  r.GravityBaseMS,
		GravityStepMS:  r.GravityStepMS,
		GravityFloorMS: r.GravityFloorMS,
		SoftDropMS:     r.SoftDropMS,
		LinesPerLevel:  r.LinesPerLevel,
		DeltaMinMS:     r.DeltaMinMS,
		DeltaMaxMS:     r.DeltaMaxMS,
	}
	for _, k := range r.KickOffsets {
		f.KickOffsets = append(f.KickOffsets, kickOffset{DX: k.DX, DY: k.DY})
	}
	return f
}

func rulesFromFile(f rulesFile) game.Rules {
	r := game.Rules{
		ScoreTable:     append([]int64(nil), f.ScoreTable...),
		ComboWindowMS:  f.ComboWindowMS,
		ComboIncrement: f.ComboIncrement,
		FlashMS:        f.FlashMS,
		GravityBaseMS:  f.GravityBaseMS,
		GravityStepMS:  f.GravityStepMS,
		GravityFloorMS: f.GravityFloorMS,
		SoftDropMS:     f.SoftDropMS,
		LinesPerLevel:  f.LinesPerLevel,
		DeltaMinMS:     f.DeltaMinMS,
		DeltaMaxMS:     f.DeltaMaxMS,
	}
	for _, k := range f.KickOffsets {
		r.KickOffsets = append(r.KickOffsets, game.KickOffset{DX: k.DX, DY: k.DY})
	}
	return r
}

func validate(r game.Rules) error {
	if len(r.KickOffsets) == 0 {
		return fmt.Errorf("kick_offsets must not be empty")
	}
	if r.KickOffsets[0] != (game.KickOffset{}) {
		return fmt.Errorf("kick_offsets[0] must be the identity offset")
	}
	if len(r.ScoreTable) < 2 {
		return fmt.Errorf("score_table must cover at least one line count")
	}
	if r.FlashMS < 0 || r.ComboWindowMS < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if r.GravityFloorMS <= 0 || r.GravityBaseMS < r.GravityFloorMS {
		return fmt.Errorf("gravity curve must satisfy 0 < floor <= base")
	}
	if r.SoftDropMS <= 0 {
		return fmt.Errorf("soft_drop_ms must be positive")
	}
	if r.DeltaMinMS <= 0 || r.DeltaMaxMS < r.DeltaMinMS {
		return fmt.Errorf("delta clamp must satisfy 0 < min <= max")
	}
	if r.LinesPerLevel <= 0 {
		return fmt.Errorf("lines_per_level must be positive")
	}
	return nil
}
