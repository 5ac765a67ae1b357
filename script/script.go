// Package script runs the optional Lua startup script. The script sees a
// global `uterm` table seeded with the session options; fields it writes
// back override the configuration, and uterm.display(text) writes through
// the local console before the dispatch loop starts.
package script

import (
	"bufio"
	"os"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Options are the session settings a startup script may override.
type Options struct {
	Termspec string
	Echo     bool
}

// Engine is a lua script engine
type Engine struct {
	L *lua.LState
}

// NewEngine create a new Engine
func NewEngine() *Engine {
	return &Engine{L: lua.NewState()}
}

// Stop will stop the engine
func (e *Engine) Stop() {
	e.L.Close()
}

// Run compiles and executes the script at path, then reads the
// overridable fields back out of the uterm table.
func (e *Engine) Run(path string, opts *Options, display func(string) error) error {
	proto, err := e.Compile(path)
	if err != nil {
		return err
	}

	tbl := e.L.NewTable()
	e.L.SetField(tbl, "termspec", lua.LString(opts.Termspec))
	e.L.SetField(tbl, "echo", lua.LBool(opts.Echo))
	e.L.SetField(tbl, "display", e.L.NewFunction(func(L *lua.LState) int {
		if err := display(L.CheckString(1)); err != nil {
			L.RaiseError("display: %s", err.Error())
		}
		return 0
	}))
	e.L.SetGlobal("uterm", tbl)

	e.L.Push(e.L.NewFunctionFromProto(proto))
	if err := e.L.PCall(0, lua.MultRet, nil); err != nil {
		return err
	}

	opts.Termspec = lua.LVAsString(e.L.GetField(tbl, "termspec"))
	opts.Echo = lua.LVAsBool(e.L.GetField(tbl, "echo"))

	return nil
}

// Compile reads the passed lua file from disk and compiles it.
func (e *Engine) Compile(filePath string) (*lua.FunctionProto, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	chunk, err := parse.Parse(reader, filePath)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, filePath)
	if err != nil {
		return nil, err
	}
	return proto, nil
}
