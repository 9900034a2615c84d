package scripting

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// RegisterModules registers the dsl.* helper table into L. Generator scripts
// use it to compose spell-collection text without hand-formatting:
//
//	dsl.dice(8, 6)                 -> "8d6"
//	dsl.spell("Fireball", 3, ...)  -> "spell Fireball level 3: ..."
//	dsl.scaled(...)                -> per-level upcast expansion
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The dsl global is defined in L.
func RegisterModules(L *lua.LState) {
	dsl := L.NewTable()
	L.SetGlobal("dsl", dsl)

	L.SetField(dsl, "dice", L.NewFunction(luaDice))
	L.SetField(dsl, "spell", L.NewFunction(luaSpell))
	L.SetField(dsl, "scaled", L.NewFunction(luaScaled))
}

// luaDice formats a dice term: dsl.dice(count, sides) -> "NdM".
func luaDice(L *lua.LState) int {
	count := L.CheckInt(1)
	sides := L.CheckInt(2)
	L.Push(lua.LString(fmt.Sprintf("%dd%d", count, sides)))
	return 1
}

// luaSpell formats one spell line: dsl.spell(name, level, formula).
// A level of 0 omits the level clause. Names with spaces are quoted.
func luaSpell(L *lua.LState) int {
	name := L.CheckString(1)
	level := L.CheckInt(2)
	formula := L.CheckString(3)

	if strings.ContainsAny(name, " \t") {
		name = `"` + name + `"`
	}
	var line string
	if level > 0 {
		line = fmt.Sprintf("spell %s level %d: %s", name, level, formula)
	} else {
		line = fmt.Sprintf("spell %s: %s", name, formula)
	}
	L.Push(lua.LString(line))
	return 1
}

// luaScaled formats the common upcast pattern: a base dice pool that grows
// per slot level above the spell's own. The count clamps at zero so casting
// at or below the spell's level stays evaluable.
//
//	dsl.scaled(8, 6, 3) -> "8d6 + sum(best(slot - 3, 0), 1d6)"
func luaScaled(L *lua.LState) int {
	count := L.CheckInt(1)
	sides := L.CheckInt(2)
	level := L.CheckInt(3)
	L.Push(lua.LString(fmt.Sprintf("%dd%d + sum(best(slot - %d, 0), 1d%d)", count, sides, level, sides)))
	return 1
}
