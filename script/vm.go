// Package script exposes a codeboard engine to Lua content scripts through
// gopher-lua. Everything lives in one global table, game:
//
//	game.register_entity("Rock", {size = 30, color = "#888888"}, {small = {size = 10}})
//	local id = game.schedule_task(function()
//	  game.spawn("Rock", "small", {x = 100, y = 50})
//	end, {time = 1, loop = true})
//
// Durations are seconds. The VM is single-threaded: call it only from
// the goroutine driving the engine's frames.
package script

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/codeboardgames/codeboard"
)

const (
	entityTypeName = "codeboard.entity"
	taskTypeName   = "codeboard.task"
)

// VM wraps one Lua state bound to an engine.
type VM struct {
	L      *lua.LState
	engine *codeboard.Engine
	log    *zap.Logger
}

// New creates a VM with the standard libraries and the game table.
func New(engine *codeboard.Engine, log *zap.Logger) *VM {
	if log == nil {
		log = zap.NewNop()
	}
	vm := &VM{
		L:      lua.NewState(lua.Options{SkipOpenLibs: false}),
		engine: engine,
		log:    log,
	}
	vm.L.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.registerEntityType()
	vm.registerTaskType()
	vm.L.SetGlobal("game", vm.L.SetFuncs(vm.L.NewTable(), map[string]lua.LGFunction{
		"schedule_task":   vm.scheduleTask,
		"clear_task":      vm.clearTask,
		"find_task":       vm.findTask,
		"register_entity": vm.registerEntity,
		"spawn":           vm.spawn,
		"entities":        vm.entities,
		"pause":           vm.pause,
		"resume":          vm.resume,
		"toggle_pause":    vm.togglePause,
		"is_paused":       vm.isPaused,
		"bind_key":        vm.bindKey,
		"play_sound":      vm.playSound,
		"play_music":      vm.playMusic,
		"log":             vm.logf,
	}))
	return vm
}

// Close releases the Lua state.
func (vm *VM) Close() { vm.L.Close() }

// DoString runs a chunk of Lua source.
func (vm *VM) DoString(src string) error {
	if err := vm.L.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// LoadFS runs every .lua file in dir of fsys, in name order.
func (vm *VM) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read scripts %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".lua" {
			continue
		}
		p := path.Join(dir, entry.Name())
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		fn, err := vm.L.Load(bytes.NewReader(src), p)
		if err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		vm.L.Push(fn)
		if err := vm.L.PCall(0, lua.MultRet, nil); err != nil {
			return fmt.Errorf("run %s: %w", p, err)
		}
		vm.log.Debug("loaded lua script", zap.String("file", p))
	}
	return nil
}

// call invokes a Lua callback from Go. Errors are logged, not raised, so a
// broken script callback cannot stop the frame.
func (vm *VM) call(fn *lua.LFunction, what string, args ...lua.LValue) {
	if err := vm.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		vm.log.Error("lua callback failed", zap.String("callback", what), zap.Error(err))
	}
}

func seconds(v lua.LValue) time.Duration {
	return time.Duration(float64(lua.LVAsNumber(v)) * float64(time.Second))
}

func scopeArg(L *lua.LState, n int) codeboard.Scope {
	if L.OptBool(n, false) {
		return codeboard.ScopeGlobal
	}
	return codeboard.ScopeCurrent
}

// game.schedule_task(fn, opts) -> id
func (vm *VM) scheduleTask(L *lua.LState) int {
	fn := L.CheckFunction(1)
	opts := codeboard.TaskOptions{}
	if t := L.OptTable(2, nil); t != nil {
		opts.ID = lua.LVAsString(t.RawGetString("id"))
		opts.Time = seconds(t.RawGetString("time"))
		opts.Delay = seconds(t.RawGetString("delay"))
		opts.Expires = seconds(t.RawGetString("expires"))
		opts.Loop = lua.LVAsBool(t.RawGetString("loop"))
		opts.Immediate = lua.LVAsBool(t.RawGetString("immediate"))
		opts.Global = lua.LVAsBool(t.RawGetString("global"))
	}
	id := vm.engine.ScheduleTask(func() { vm.call(fn, "task") }, opts)
	L.Push(lua.LString(id))
	return 1
}

// game.clear_task(id, global)
func (vm *VM) clearTask(L *lua.LState) int {
	vm.engine.ClearTask(L.CheckString(1), scopeArg(L, 2))
	return 0
}

// game.find_task(id, global) -> task or nil
func (vm *VM) findTask(L *lua.LState) int {
	t := vm.engine.FindTask(L.CheckString(1), scopeArg(L, 2))
	if t == nil {
		L.Push(lua.LNil)
		return 1
	}
	ud := L.NewUserData()
	ud.Value = t
	L.SetMetatable(ud, L.GetTypeMetatable(taskTypeName))
	L.Push(ud)
	return 1
}

// game.register_entity(name, defaults, subtypes)
func (vm *VM) registerEntity(L *lua.LState) int {
	name := L.CheckString(1)
	defaults, err := entityOptions(L.OptTable(2, nil))
	if err != nil {
		L.RaiseError("register_entity %s: %v", name, err)
		return 0
	}
	subtypes := make(map[string][]codeboard.EntityOption)
	if t := L.OptTable(3, nil); t != nil {
		var ferr error
		t.ForEach(func(k, v lua.LValue) {
			st, ok := v.(*lua.LTable)
			if !ok || ferr != nil {
				return
			}
			subtypes[k.String()], ferr = entityOptions(st)
		})
		if ferr != nil {
			L.RaiseError("register_entity %s: %v", name, ferr)
			return 0
		}
	}
	vm.engine.RegisterEntity(name, defaults, subtypes)
	return 0
}

// game.spawn(kind, subtype, overrides) -> entity
func (vm *VM) spawn(L *lua.LState) int {
	kind := L.CheckString(1)
	def := vm.engine.EntityDef(kind)
	if def == nil {
		L.ArgError(1, fmt.Sprintf("unknown entity kind %q", kind))
		return 0
	}
	overrides, err := entityOptions(L.OptTable(3, nil))
	if err != nil {
		L.RaiseError("spawn %s: %v", kind, err)
		return 0
	}
	e := def.Spawn(L.OptString(2, ""), overrides...)
	L.Push(vm.wrapEntity(e))
	return 1
}

// game.entities(group) -> {entity...}
func (vm *VM) entities(L *lua.LState) int {
	t := L.NewTable()
	for _, e := range vm.engine.Entities(L.OptString(1, "")) {
		t.Append(vm.wrapEntity(e))
	}
	L.Push(t)
	return 1
}

func (vm *VM) pause(L *lua.LState) int       { vm.engine.Pause(); return 0 }
func (vm *VM) resume(L *lua.LState) int      { vm.engine.Resume(); return 0 }
func (vm *VM) togglePause(L *lua.LState) int { vm.engine.TogglePause(); return 0 }

func (vm *VM) isPaused(L *lua.LState) int {
	L.Push(lua.LBool(vm.engine.IsPaused()))
	return 1
}

// game.bind_key(code, fn, up) binds on the current layer.
func (vm *VM) bindKey(L *lua.LState) int {
	code := L.CheckString(1)
	fn := L.CheckFunction(2)
	cb := func() { vm.call(fn, "key "+code) }
	if L.OptBool(3, false) {
		vm.engine.Current().BindKeyUp(code, cb)
	} else {
		vm.engine.Current().BindKeyDown(code, cb)
	}
	return 0
}

func soundArgs(L *lua.LState) (string, codeboard.SoundOptions) {
	src := L.CheckString(1)
	var opts codeboard.SoundOptions
	if t := L.OptTable(2, nil); t != nil {
		opts.Volume = float64(lua.LVAsNumber(t.RawGetString("volume")))
		opts.Rate = float64(lua.LVAsNumber(t.RawGetString("rate")))
		opts.Global = lua.LVAsBool(t.RawGetString("global"))
	}
	return src, opts
}

func (vm *VM) playSound(L *lua.LState) int {
	vm.engine.PlaySoundEffect(soundArgs(L))
	return 0
}

func (vm *VM) playMusic(L *lua.LState) int {
	vm.engine.PlayMusic(soundArgs(L))
	return 0
}

// game.log(fmt, ...) logs at info level, formatted like string.format.
func (vm *VM) logf(L *lua.LState) int {
	msg := L.CheckString(1)
	if L.GetTop() > 1 {
		args := make([]any, 0, L.GetTop()-1)
		for i := 2; i <= L.GetTop(); i++ {
			args = append(args, L.Get(i).String())
		}
		msg = fmt.Sprintf(msg, args...)
	}
	vm.log.Info(msg, zap.String("source", "lua"))
	return 0
}

// entityOptions converts a Lua table of entity fields (the keys used in
// YAML entity files) into options. lifespan is read in seconds.
func entityOptions(t *lua.LTable) ([]codeboard.EntityOption, error) {
	if t == nil {
		return nil, nil
	}
	fields, ok := toGo(t).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("entity fields must be a table with string keys")
	}
	var pos []codeboard.EntityOption
	x, hasX := fields["x"].(float64)
	y, hasY := fields["y"].(float64)
	if hasX || hasY {
		pos = append(pos, func(e *codeboard.Entity) {
			if hasX {
				e.X = x
			}
			if hasY {
				e.Y = y
			}
		})
	}
	delete(fields, "x")
	delete(fields, "y")
	if secs, ok := fields["lifespan"].(float64); ok {
		fields["lifespan"] = seconds(lua.LNumber(secs)).String()
	}

	raw, err := yaml.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var spec codeboard.EntitySpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, err
	}
	opts, err := spec.Options()
	if err != nil {
		return nil, err
	}
	return append(opts, pos...), nil
}

// toGo converts a Lua value to plain Go values. Tables with only
// consecutive integer keys from 1 become slices; other tables become maps.
func toGo(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if n := v.Len(); n > 0 && countKeys(v) == n {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, toGo(v.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		v.ForEach(func(k, val lua.LValue) {
			out[k.String()] = toGo(val)
		})
		return out
	}
	return nil
}

func countKeys(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}
