package compile

import (
	"bytes"
	"io/ioutil"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/parser"
)

func load(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, err := parser.Parse(strings.NewReader(src), "test.sp")
	if err != nil {
		t.Fatalf("parse: %s", err)
	}
	return prog
}

func TestCheckFixture(t *testing.T) {
	prog, err := parser.ParseFile("../testdata/input.sp")
	if err != nil {
		t.Fatal(err)
	}

	info, err := Check(prog)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"test_arithmetic", "test_semantic", "test_minimal", "main"} {
		if info.Returns[name] != Void {
			t.Errorf("%s returns %s", name, info.Returns[name])
		}
	}
}

func TestReturnInference(t *testing.T) {
	info, err := Check(load(t, `
func num() { return 1 + later(); }
func later() { return 2; }
func word() { if 1 { return "yes"; } else { return "no"; } }
func loop() { return loop(); }
func countdown() { if 0 { return 1; } return countdown(); }
func main() { print(num()); print(word()); }`))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]Type{
		"num":       Int,
		"later":     Int,
		"word":      Str,
		"loop":      Void,
		"countdown": Int,
		"main":      Void,
	}
	for name, w := range want {
		if got := info.Returns[name]; got != w {
			t.Errorf("%s: got %s, want %s", name, got, w)
		}
	}
}

func TestCheckErrors(t *testing.T) {
	cases := []struct {
		src  string
		name bool
	}{
		{`func main() { print("a" + 1); }`, false},
		{`func main() { if "x" { } }`, false},
		{`func main() { let a = 1 == "1"; }`, false},
		{`func f() {} func main() { print(f()); }`, false},
		{`func f() {} func main() { let x = f() == f(); }`, false},
		{`func f() { if 1 { return 1; } } func main() { f(); }`, false},
		{`func f() { if 1 { return 1; } return "s"; } func main() { f(); }`, false},
		{`func main() { print(1, 2); }`, false},
		{`func main() { main(3); }`, false},
		{`func main() { print(x); }`, true},
		{`func main() { if 1 { let x = 1; } print(x); }`, true},
		{`func main() { nope(); }`, true},
	}

	for _, c := range cases {
		_, err := Check(load(t, c.src))
		if err == nil {
			t.Errorf("%s: expected an error", c.src)
			continue
		}
		switch cause := errors.Cause(err).(type) {
		case errors.NameError:
			if !c.name {
				t.Errorf("%s: got NameError %s", c.src, cause)
			}
		case errors.TypeError:
			if c.name {
				t.Errorf("%s: got TypeError %s", c.src, cause)
			}
		default:
			t.Errorf("%s: unexpected %T: %s", c.src, cause, err)
		}
	}
}

func TestCompileFixture(t *testing.T) {
	prog, err := parser.ParseFile("../testdata/input.sp")
	if err != nil {
		t.Fatal(err)
	}

	m, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	out := m.String()

	for _, want := range []string{
		"define void @sponge.test_arithmetic()",
		"define void @sponge.test_semantic()",
		"define void @sponge.test_minimal()",
		"define void @sponge.main()",
		"define i32 @main()",
		"call void @sponge.main()",
		"declare i32 @printf(i8* %format, ...)",
		`c"ok\00"`,
		"add i64",
		"mul i64",
		"icmp sgt i64",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("module lacks %q:\n%s", want, out)
		}
	}
}

func TestCompileLowering(t *testing.T) {
	m, err := Compile(load(t, `
func half() { return 10 / 2; }
func same() { if "a" == "a" { return "same"; } return "different"; }
func main() { print(half()); print(same()); let a = 1; if a { let a = 2; print(a); } print(a); }`))
	if err != nil {
		t.Fatal(err)
	}
	out := m.String()

	for _, want := range []string{
		"define i64 @sponge.half()",
		"define i8* @sponge.same()",
		"sdiv i64",
		"call void @sponge.divzero(i64 2)",
		"call i32 @strcmp(",
		"alloca i64",
		"ret i64",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("module lacks %q:\n%s", want, out)
		}
	}

	if strings.Count(out, `c"same\00"`) != 1 {
		t.Errorf("string constants not shared:\n%s", out)
	}
}

func TestCompileRequiresMain(t *testing.T) {
	_, err := Compile(load(t, `func helper() { print(1); }`))
	if nerr, ok := errors.Cause(err).(errors.NameError); !ok || nerr.Name != "main" {
		t.Fatalf("expected NameError for main, got %s", repr.String(err))
	}
}

// execute compiles prog and runs it through lli, returning stdout and the
// exit status.
func execute(t *testing.T, prog *ast.Program) (string, int) {
	t.Helper()

	lli, err := exec.LookPath("lli")
	if err != nil {
		t.Skip("lli not installed")
	}

	m, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(t.TempDir(), "prog.ll")
	if err := ioutil.WriteFile(file, []byte(m.String()), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := exec.Command(lli, file)
	cmd.Stdout = &out
	err = cmd.Run()
	if exit, ok := err.(*exec.ExitError); ok {
		return out.String(), exit.ExitCode()
	}
	if err != nil {
		t.Fatal(err)
	}
	return out.String(), 0
}

func TestExecuteFixture(t *testing.T) {
	prog, err := parser.ParseFile("../testdata/input.sp")
	if err != nil {
		t.Fatal(err)
	}

	out, status := execute(t, prog)
	if status != 0 || out != "30\nok\n" {
		t.Fatalf("exit %d, printed %q", status, out)
	}
}

func TestExecuteSemantics(t *testing.T) {
	out, status := execute(t, load(t, `
func min() { return 0 - 9223372036854775807 - 1; }
func main() {
    print(1 + 2 * 3);
    print((0 - 7) / 2);
    print(min() / (0 - 1));
    print(9223372036854775807 + 1);
    if "abc" == "abc" { print("same"); }
    if "abc" != "abd" { print("differ"); }
    let x = 1;
    if x { let x = 2; print(x); }
    print(x);
}`))
	want := "7\n-3\n-9223372036854775808\n-9223372036854775808\nsame\ndiffer\n2\n1\n"
	if status != 0 || out != want {
		t.Fatalf("exit %d, printed %q, want %q", status, out, want)
	}
}

func TestExecuteDivideByZero(t *testing.T) {
	out, status := execute(t, load(t, `
func zero() { return 0; }
func main() {
    print(1);
    print(5 / zero());
    print(2);
}`))
	if status != 1 {
		t.Fatalf("exit %d", status)
	}
	if out != "1\ndivision by zero at line 5\n" {
		t.Fatalf("printed %q", out)
	}
}
