package main

import (
	"path/filepath"
	"sort"

	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/parser"
	"github.com/ztrue/tracerr"
)

// parseDirectory parses every file in dir matching the manifest's Sources
// glob into one program.
func parseDirectory(dir string, doc spongeModule) (*ast.Program, error) {
	files, err := filepath.Glob(filepath.Join(dir, doc.Sources))
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	sort.Strings(files)

	prog := ast.NewProgram()
	for _, file := range files {
		plog.Infof("parsing %s", file)

		p, err := parser.ParseFile(file)
		if err != nil {
			return nil, err
		}
		if err := prog.Merge(p); err != nil {
			return nil, tracerr.Wrap(err)
		}
	}

	return prog, nil
}

// loadProgram parses the file named on the command line, or the module in
// the current directory when there is none.
func loadProgram(file string, doc spongeModule) (*ast.Program, error) {
	if file != "" {
		return parser.ParseFile(file)
	}
	return parseDirectory(".", doc)
}
