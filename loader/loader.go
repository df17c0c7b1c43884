package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/nathoo/bravecore/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// rawDef is a curried constructor call: Kind "id" { ... }.
type rawDef struct {
	id    string
	table *lua.LTable
	order int
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game       *lua.LTable
	statuses   []rawDef
	skills     []rawDef
	heroes     []rawDef
	enemies    []rawDef
	encounters []rawDef
	order      int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Load reads all .lua files from dir. See LoadFS.
func Load(dir string) (*state.Defs, error) {
	return LoadFS(os.DirFS(dir), dir)
}

// LoadFS runs every .lua file at the root of fsys in one sandboxed VM,
// compiles the collected definitions, validates every reference and returns
// the immutable Defs. The VM is discarded afterwards. label names the source
// in errors and logs.
func LoadFS(fsys fs.FS, label string) (*state.Defs, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", label, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", label)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, name := range luaFiles {
		if err := runFile(L, fsys, name); err != nil {
			return nil, fmt.Errorf("executing %s: %w", name, err)
		}
	}

	c, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	defs, err := build(c)
	if err != nil {
		return nil, fmt.Errorf("building content: %w", err)
	}

	slog.Info("content loaded",
		"source", label,
		"files", len(luaFiles),
		"statuses", defs.Registry.Len(),
		"skills", defs.Catalog.Len(),
		"templates", len(defs.Templates),
		"encounters", len(defs.Encounters),
	)
	return defs, nil
}

// runFile compiles one chunk under its file name and calls it.
func runFile(L *lua.LState, fsys fs.FS, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	fn, err := L.Load(f, name)
	if err != nil {
		return err
	}
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not reseed; battles own their RNG.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
