package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/interp"
)

func tempDir(t *testing.T) string {
	t.Helper()

	dir, err := ioutil.TempDir("", "sponge")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestModuleDefaults(t *testing.T) {
	doc, err := loadModule(tempDir(t))
	if err != nil {
		t.Fatal(err)
	}

	want := spongeModule{Entry: "main", Sources: "*.sp", LogLevel: "WARNING"}
	if doc != want {
		t.Fatalf("got %s", repr.String(doc))
	}
}

func TestModuleRoundTrip(t *testing.T) {
	dir := tempDir(t)

	if err := writeModule(dir, spongeModule{Package: "demo", MaxDepth: 100}); err != nil {
		t.Fatal(err)
	}
	doc, err := loadModule(dir)
	if err != nil {
		t.Fatal(err)
	}

	want := spongeModule{
		Package:  "demo",
		Entry:    "main",
		Sources:  "*.sp",
		LogLevel: "WARNING",
		MaxDepth: 100,
		Output:   "demo",
	}
	if doc != want {
		t.Fatalf("got %s", repr.String(doc))
	}
}

func TestBadManifest(t *testing.T) {
	dir := tempDir(t)
	if err := ioutil.WriteFile(filepath.Join(dir, manifestName), []byte("Package: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadModule(dir); err == nil {
		t.Fatal("expected an error")
	}
}

func TestParseDirectory(t *testing.T) {
	dir := tempDir(t)
	files := map[string]string{
		"a.sp":    "func main() { helper(); }",
		"b.sp":    "func helper() { print(\"merged\"); }",
		"c.other": "this is not sponge",
	}
	for name, src := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}

	doc, _ := loadModule(dir)
	prog, err := parseDirectory(dir, doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Funcs) != 2 || prog.Funcs[0].Name != "main" || prog.Funcs[1].Name != "helper" {
		t.Fatalf("got %s", repr.String(prog.Funcs))
	}

	var out bytes.Buffer
	if err := interp.New(prog, &out).Run(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "merged\n" {
		t.Fatalf("printed %q", out.String())
	}
}

func TestParseDirectoryDuplicates(t *testing.T) {
	dir := tempDir(t)
	for _, name := range []string{"a.sp", "b.sp"} {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte("func main() {}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	doc, _ := loadModule(dir)
	_, err := parseDirectory(dir, doc)
	if _, ok := errors.Cause(err).(errors.DuplicateFunction); !ok {
		t.Fatalf("expected DuplicateFunction, got %v", err)
	}
}

func TestLoadProgramFile(t *testing.T) {
	prog, err := loadProgram("testdata/input.sp", spongeModule{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := prog.Lookup(ast.EntryPoint); !ok {
		t.Fatal("fixture has no main")
	}
}

func TestOutputName(t *testing.T) {
	cases := []struct {
		flag string
		doc  spongeModule
		file string
		want string
	}{
		{"bin", spongeModule{Output: "demo"}, "x.sp", "bin"},
		{"", spongeModule{Output: "demo"}, "x.sp", "demo"},
		{"", spongeModule{}, "dir/prog.sp", "prog"},
		{"", spongeModule{}, "", "a.out"},
	}
	for _, c := range cases {
		if got := outputName(c.flag, c.doc, c.file); got != c.want {
			t.Errorf("outputName(%q, %s, %q) = %q, want %q", c.flag, repr.String(c.doc), c.file, got, c.want)
		}
	}
}

func TestIncompleteInput(t *testing.T) {
	s := interp.NewSession(interp.New(ast.NewProgram(), &bytes.Buffer{}))

	for _, src := range []string{"func f() {", "let x = ", "if 1 { print(1);"} {
		if _, err := evalInput(s, src); !incomplete(err) {
			t.Errorf("%q: expected incomplete input, got %v", src, err)
		}
	}
	for _, src := range []string{"let = 1;", "1 +* 2;"} {
		if _, err := evalInput(s, src); err == nil || incomplete(err) {
			t.Errorf("%q: expected a hard error, got %v", src, err)
		}
	}
}

func TestEvalInput(t *testing.T) {
	var out bytes.Buffer
	s := interp.NewSession(interp.New(ast.NewProgram(), &out))

	if _, err := evalInput(s, "func double() { return n; } let n = 4;"); err != nil {
		t.Fatal(err)
	}
	v, err := evalInput(s, "n * 2;")
	if err != nil {
		t.Fatal(err)
	}
	if interp.Format(v) != "8" {
		t.Fatalf("got %s", interp.Format(v))
	}
	if _, err := evalInput(s, "double();"); err == nil {
		t.Fatal("function saw the session frame")
	}
}

// script answers prompts from a fixed list, then fails with err.
type script struct {
	lines   []string
	prompts []string
	err     error
}

func (s *script) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", s.err
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestReadInputContinuation(t *testing.T) {
	in := &script{lines: []string{"func f() {", "return 1;", "}"}, err: io.EOF}

	src, ok := readInput(in)
	if !ok || src != "func f() {\nreturn 1;\n}" {
		t.Fatalf("got %q %v", src, ok)
	}
	want := []string{promptMain, promptCont, promptCont}
	if repr.String(in.prompts) != repr.String(want) {
		t.Fatalf("prompts %s", repr.String(in.prompts))
	}

	if _, ok := readInput(in); ok {
		t.Fatal("EOF did not end input")
	}
}

func TestReadInputStopsOnError(t *testing.T) {
	in := &script{err: fmt.Errorf("terminal gone")}

	for i := 0; i < 3; i++ {
		if src, ok := readInput(in); ok {
			t.Fatalf("failed prompt returned %q", src)
		}
	}
	if len(in.prompts) != 3 {
		t.Fatalf("prompted %d times", len(in.prompts))
	}
}
