package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/codeboardgames/codeboard"
)

func (vm *VM) registerEntityType() {
	mt := vm.L.NewTypeMetatable(entityTypeName)
	vm.L.SetField(mt, "__index", vm.L.NewFunction(vm.entityIndex))
	vm.L.SetField(mt, "__newindex", vm.L.NewFunction(vm.entityNewIndex))
	vm.L.SetField(mt, "__eq", vm.L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkEntity(L, 1) == checkEntity(L, 2)))
		return 1
	}))
}

func (vm *VM) wrapEntity(e *codeboard.Entity) *lua.LUserData {
	ud := vm.L.NewUserData()
	ud.Value = e
	vm.L.SetMetatable(ud, vm.L.GetTypeMetatable(entityTypeName))
	return ud
}

func checkEntity(L *lua.LState, n int) *codeboard.Entity {
	ud := L.CheckUserData(n)
	if e, ok := ud.Value.(*codeboard.Entity); ok {
		return e
	}
	L.ArgError(n, "entity expected")
	return nil
}

var entityMethods = map[string]func(vm *VM, L *lua.LState) int{
	"despawn": func(vm *VM, L *lua.LState) int {
		checkEntity(L, 1).Despawn()
		return 0
	},
	"distance_to": func(vm *VM, L *lua.LState) int {
		L.Push(lua.LNumber(checkEntity(L, 1).DistanceTo(checkEntity(L, 2))))
		return 1
	},
	"angle_towards": func(vm *VM, L *lua.LState) int {
		checkEntity(L, 1).AngleTowards(checkEntity(L, 2))
		return 0
	},
	"add_xp": func(vm *VM, L *lua.LState) int {
		checkEntity(L, 1).AddXP(float64(L.CheckNumber(2)))
		return 0
	},
	"collides_with": func(vm *VM, L *lua.LState) int {
		e := checkEntity(L, 1)
		e.CollisionGroups = append(e.CollisionGroups, L.CheckString(2))
		return 0
	},
}

func (vm *VM) entityIndex(L *lua.LState) int {
	e := checkEntity(L, 1)
	key := L.CheckString(2)
	if m, ok := entityMethods[key]; ok {
		L.Push(L.NewFunction(func(L *lua.LState) int { return m(vm, L) }))
		return 1
	}
	var v lua.LValue = lua.LNil
	switch key {
	case "id":
		v = lua.LString(e.ID)
	case "group":
		v = lua.LString(e.Group)
	case "subtype":
		v = lua.LString(e.Subtype)
	case "x":
		v = lua.LNumber(e.X)
	case "y":
		v = lua.LNumber(e.Y)
	case "size":
		v = lua.LNumber(e.Size)
	case "speed":
		v = lua.LNumber(e.Velocity.Speed)
	case "direction":
		v = lua.LNumber(e.Velocity.Direction)
	case "hp":
		v = lua.LNumber(e.HP)
	case "max_hp":
		v = lua.LNumber(e.MaxHP)
	case "level":
		v = lua.LNumber(e.Level)
	case "xp":
		v = lua.LNumber(e.XP)
	case "spawned":
		v = lua.LBool(e.Spawned())
	case "hidden":
		v = lua.LBool(e.Hidden)
	}
	L.Push(v)
	return 1
}

func (vm *VM) entityNewIndex(L *lua.LState) int {
	e := checkEntity(L, 1)
	key := L.CheckString(2)
	switch key {
	case "x":
		e.X = float64(L.CheckNumber(3))
	case "y":
		e.Y = float64(L.CheckNumber(3))
	case "size":
		e.Size = float64(L.CheckNumber(3))
	case "speed":
		e.Velocity.Speed = float64(L.CheckNumber(3))
	case "direction":
		e.Velocity.Direction = float64(L.CheckNumber(3))
	case "hp":
		e.HP = float64(L.CheckNumber(3))
	case "hidden":
		e.Hidden = L.CheckBool(3)
	case "on_update":
		fn := L.CheckFunction(3)
		e.OnUpdate = func(e *codeboard.Entity, dt float64) {
			vm.call(fn, "on_update", vm.wrapEntity(e), lua.LNumber(dt))
		}
	case "on_collide":
		fn := L.CheckFunction(3)
		e.OnCollide = func(e, other *codeboard.Entity) {
			vm.call(fn, "on_collide", vm.wrapEntity(e), vm.wrapEntity(other))
		}
	case "on_despawn":
		fn := L.CheckFunction(3)
		e.OnDespawn = func(e *codeboard.Entity) {
			vm.call(fn, "on_despawn", vm.wrapEntity(e))
		}
	default:
		L.RaiseError("entity field %q is read-only or unknown", key)
	}
	return 0
}

func (vm *VM) registerTaskType() {
	mt := vm.L.NewTypeMetatable(taskTypeName)
	vm.L.SetField(mt, "__index", vm.L.NewFunction(vm.taskIndex))
}

func checkTask(L *lua.LState, n int) *codeboard.Task {
	ud := L.CheckUserData(n)
	if t, ok := ud.Value.(*codeboard.Task); ok {
		return t
	}
	L.ArgError(n, "task expected")
	return nil
}

func (vm *VM) taskIndex(L *lua.LState) int {
	t := checkTask(L, 1)
	switch key := L.CheckString(2); key {
	case "id":
		L.Push(lua.LString(t.ID()))
	case "loop":
		L.Push(lua.LBool(t.Loop()))
	case "paused":
		L.Push(lua.LBool(t.IsPaused()))
	case "remaining":
		L.Push(lua.LNumber(t.Peek().Seconds()))
	case "pause":
		L.Push(L.NewFunction(func(L *lua.LState) int { checkTask(L, 1).Pause(); return 0 }))
	case "resume":
		L.Push(L.NewFunction(func(L *lua.LState) int { checkTask(L, 1).Resume(); return 0 }))
	case "refresh":
		L.Push(L.NewFunction(func(L *lua.LState) int { checkTask(L, 1).Refresh(); return 0 }))
	default:
		L.Push(lua.LNil)
	}
	return 1
}
