package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable creates a read-only platform table and injects it into the Lua state as a global.
// This should be called before loading any user configuration code.
func InjectPlatformTable(L *lua.LState, info *Info, triple Triple) error {
	platformTable := L.NewTable()

	// Raw host values
	L.SetField(platformTable, "kernel", lua.LString(info.Kernel))
	L.SetField(platformTable, "machine", lua.LString(info.Machine))
	L.SetField(platformTable, "distro", lua.LString(info.Platform))

	// Resolved triple
	L.SetField(platformTable, "os", lua.LString(triple.OS.String()))
	L.SetField(platformTable, "arch", lua.LString(triple.Arch.String()))
	L.SetField(platformTable, "triple", lua.LString(triple.String()))

	L.SetField(platformTable, "is_linux", lua.LBool(triple.OS == LinuxMusl))
	L.SetField(platformTable, "is_macos", lua.LBool(triple.OS == MacOS))
	L.SetField(platformTable, "is_x86_64", lua.LBool(triple.Arch == X86_64))
	L.SetField(platformTable, "is_aarch64", lua.LBool(triple.Arch == Aarch64))

	// Helper function: when(condition, value)
	// Returns value if condition is true, nil otherwise
	whenFunc := L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		value := L.Get(2)
		if cond {
			L.Push(value)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	})
	L.SetField(platformTable, "when", whenFunc)

	L.SetGlobal("platform", makeReadOnly(L, platformTable))

	return nil
}

// makeReadOnly makes a Lua table read-only by creating a proxy table with a metatable.
// The proxy redirects reads to the original table but prevents all writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()

	L.SetField(mt, "__index", table)

	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))

	// Prevent changing the metatable itself
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)

	return proxy
}
