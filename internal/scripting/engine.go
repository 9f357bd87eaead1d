package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game event hooks.
// Single-goroutine access only (game loop).
//
// Hooks are pure data-out: they receive event facts and return an
// announcement string (or nothing). They never reach back into game state,
// and a missing or failing hook degrades to silence, never to a stalled tick.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	eventsPath := filepath.Join(scriptsDir, "events")
	if err := e.loadDir(eventsPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load event scripts: %w", err)
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LineClearEvent holds pre-packed data for the line-clear hook.
type LineClearEvent struct {
	Player string
	Lines  int
	Points int64
	Combo  int
	Level  int
}

// GameOverEvent holds pre-packed data for the game-over hook.
type GameOverEvent struct {
	Player string
	Score  int64
	Level  int
	Lines  int
}

// OnLineClear calls the Lua on_line_clear function. Returns the announcement
// string, or "" when the hook is absent, errors, or declines.
func (e *Engine) OnLineClear(ev LineClearEvent) string {
	t := e.vm.NewTable()
	t.RawSetString("player", lua.LString(ev.Player))
	t.RawSetString("lines", lua.LNumber(ev.Lines))
	t.RawSetString("points", lua.LNumber(ev.Points))
	t.RawSetString("combo", lua.LNumber(ev.Combo))
	t.RawSetString("level", lua.LNumber(ev.Level))
	return e.callHook("on_line_clear", t)
}

// OnLevelUp calls the Lua on_level_up function.
func (e *Engine) OnLevelUp(player string, level int) string {
	t := e.vm.NewTable()
	t.RawSetString("player", lua.LString(player))
	t.RawSetString("level", lua.LNumber(level))
	return e.callHook("on_level_up", t)
}

// OnGameOver calls the Lua on_game_over function.
func (e *Engine) OnGameOver(ev GameOverEvent) string {
	t := e.vm.NewTable()
	t.RawSetString("player", lua.LString(ev.Player))
	t.RawSetString("score", lua.LNumber(ev.Score))
	t.RawSetString("level", lua.LNumber(ev.Level))
	t.RawSetString("lines", lua.LNumber(ev.Lines))
	return e.callHook("on_game_over", t)
}

// callHook invokes a global Lua function with one table argument and expects
// a single string (or nil) back.
func (e *Engine) callHook(name string, arg *lua.LTable) string {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return ""
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
		return ""
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if s, ok := result.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
