package dictionary

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed data/*.txt
var builtinFS embed.FS

// Lists merged into the common dictionary; every other data file is a
// language dictionary named after its file stem.
var commonLists = map[string]bool{
	"english.txt": true,
	"code.txt":    true,
}

func addBuiltin(common *Builder, langs map[string]*Builder) error {
	entries, err := fs.ReadDir(builtinFS, "data")
	if err != nil {
		return fmt.Errorf("read builtin word lists: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		f, err := builtinFS.Open(path.Join("data", name))
		if err != nil {
			return fmt.Errorf("open builtin %s: %w", name, err)
		}
		target := common
		if !commonLists[name] {
			id := strings.TrimSuffix(name, path.Ext(name))
			target = langs[id]
			if target == nil {
				target = NewBuilder(id)
				langs[id] = target
			}
		}
		err = target.AddReader(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// BuiltinIDs lists the language dictionaries compiled into the binary.
func BuiltinIDs() []string {
	entries, err := fs.ReadDir(builtinFS, "data")
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		if commonLists[e.Name()] {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(ids)
	return ids
}
