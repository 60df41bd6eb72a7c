package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Library is a set of compiled trigger scripts. It is immutable after
// loading and safe to share between battles.
type Library struct {
	names  []string
	protos []*lua.FunctionProto
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{}
}

// Compile parses src and adds it under name.
//
// Postcondition: on error the library is unchanged.
func (lib *Library) Compile(name, src string) error {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("scripting: parsing %q: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	lib.names = append(lib.names, name)
	lib.protos = append(lib.protos, proto)
	return nil
}

// Len returns the number of compiled scripts.
func (lib *Library) Len() int {
	return len(lib.protos)
}

// LoadLibrary compiles every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
func LoadLibrary(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	lib := NewLibrary()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scripting: reading %q: %w", path, err)
		}
		if err := lib.Compile(filepath.Base(path), string(data)); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
