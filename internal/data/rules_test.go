package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blockfall/server/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRulesMissingFileKeepsDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, game.DefaultRules(), rules)
}

func TestLoadRulesPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"gravity_base_ms: 600\ncombo_window_ms: 2500\n",
	), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, int64(600), rules.GravityBaseMS)
	assert.Equal(t, int64(2500), rules.ComboWindowMS)

	// Everything not mentioned keeps its default.
	def := game.DefaultRules()
	assert.Equal(t, def.ScoreTable, rules.ScoreTable)
	assert.Equal(t, def.KickOffsets, rules.KickOffsets)
	assert.Equal(t, def.FlashMS, rules.FlashMS)
}

func TestLoadRulesFullTableOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"score_table: [0, 50, 150, 250, 400]\n"+
			"kick_offsets:\n"+
			"  - { dx: 0, dy: 0 }\n"+
			"  - { dx: -1, dy: 0 }\n",
	), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 50, 150, 250, 400}, rules.ScoreTable)
	assert.Equal(t, []game.KickOffset{{DX: 0, DY: 0}, {DX: -1, DY: 0}}, rules.KickOffsets)
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"non-identity first kick", "kick_offsets:\n  - { dx: 1, dy: 0 }\n"},
		{"zero soft drop", "soft_drop_ms: 0\n"},
		{"inverted delta clamp", "delta_min_ms: 300\ndelta_max_ms: 100\n"},
		{"floor above base", "gravity_base_ms: 100\ngravity_floor_ms: 200\n"},
		{"zero lines per level", "lines_per_level: 0\n"},
		{"malformed yaml", "score_table: [oops\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := LoadRules(path)
			assert.Error(t, err)
		})
	}
}
