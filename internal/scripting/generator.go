package scripting

import (
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// generateFn is the global function a generator script must define.
const generateFn = "generate"

// GenerateSource runs the generator script at path in a fresh sandboxed VM
// and returns the text produced by its global generate() function.
//
// Each call gets its own VM; generator scripts cannot observe each other.
//
// Precondition: path must name a readable Lua script.
// Postcondition: Returns the generated text, or an error if the script fails
// to load, defines no generate(), exceeds its budget, or returns a non-string.
func GenerateSource(path string, instLimit int, timeout time.Duration) (string, error) {
	L, cancel := NewSandboxedState(instLimit, timeout)
	defer cancel()
	defer L.Close()
	RegisterModules(L)

	if err := L.DoFile(path); err != nil {
		return "", fmt.Errorf("scripting: loading %q: %w", path, err)
	}

	fn := L.GetGlobal(generateFn)
	if fn == lua.LNil {
		return "", fmt.Errorf("scripting: %q defines no %s()", path, generateFn)
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}); err != nil {
		return "", fmt.Errorf("scripting: running %s() in %q: %w", generateFn, path, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("scripting: %s() in %q returned %s, want string", generateFn, path, ret.Type())
	}
	return string(s), nil
}
