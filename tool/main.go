package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type File struct {
	Package      string         `"package" @Ident`
	Imports      []*Import      `@@*`
	Declarations []*Declaration `@@*`
}

type Import struct {
	Alias string `"import" @Ident?`
	Path  string `@String`
}

type TypeRef struct {
	Slice   bool   `@("[" "]")?`
	Pointer bool   `@"*"?`
	Name    string `@Ident`
	Sel     string `("." @Ident)?`
}

type Field struct {
	Name string   `@Ident`
	Type *TypeRef `@@`
}

type Record struct {
	Fields []*Field `"{" ( @@ ";"? )* "}"`
}

type TCase struct {
	Name   string   `"|" @Ident`
	Kind   *TypeRef `(  "of" @@`
	Record *Record  ` | @@ )`
}

type Declaration struct {
	Name   string   `"type" @Ident "="`
	Kind   *TypeRef `(  @@`
	Record *Record  ` | @@`
	Many   []*TCase ` | @@+ ) ";"`
}

var parser = participle.MustBuild(&File{})

func (t *File) IsSumType(name string) bool {
	for _, decls := range t.Declarations {
		if decls.Name == name && decls.Many != nil {
			return true
		}
	}
	return false
}

func (t *File) importPath(alias string) string {
	for _, imp := range t.Imports {
		if imp.Alias == alias || (imp.Alias == "" && path.Base(imp.Path) == alias) {
			return imp.Path
		}
	}
	panic("no import named " + alias)
}

func (t *File) typeCode(ref *TypeRef) *Statement {
	var parts []Code
	if ref.Slice {
		parts = append(parts, Index())
	}
	if ref.Pointer {
		parts = append(parts, Op("*"))
	}
	if ref.Sel != "" {
		parts = append(parts, Qual(t.importPath(ref.Name), ref.Sel))
	} else {
		parts = append(parts, Id(ref.Name))
	}
	return Add(parts...)
}

func (t *File) structCode(r *Record) *Statement {
	var fields []Code
	for _, field := range r.Fields {
		fields = append(fields, Id(field.Name).Add(t.typeCode(field.Type)))
	}
	return Struct(fields...)
}

// GenerateDecls renders t as Go source. source names the file t was read
// from in the generated header.
func GenerateDecls(source string, t *File) (string, error) {
	f := NewFile(t.Package)
	f.HeaderComment(fmt.Sprintf("Code generated by adtGen from %s. DO NOT EDIT.", source))

	for _, imp := range t.Imports {
		if imp.Alias != "" {
			f.ImportAlias(imp.Path, imp.Alias)
		} else {
			f.ImportName(imp.Path, path.Base(imp.Path))
		}
	}

	for _, decl := range t.Declarations {
		switch {
		case decl.Kind != nil:
			f.Type().Id(decl.Name).Add(t.typeCode(decl.Kind))
		case decl.Record != nil:
			f.Type().Id(decl.Name).Add(t.structCode(decl.Record))
		case decl.Many != nil:
			f.Type().Id(decl.Name).Interface(
				Id("is_" + decl.Name).Params(),
			)

			for _, it := range decl.Many {
				switch {
				case it.Record != nil:
					f.Type().Id(it.Name).Add(t.structCode(it.Record))
				case t.IsSumType(it.Kind.Name) && it.Kind.Sel == "":
					f.Type().Id(it.Name).Struct(Id(it.Kind.Name))
				default:
					f.Type().Id(it.Name).Add(t.typeCode(it.Kind))
				}

				f.Func().Params(Id("v").Id(it.Name)).Id("is_" + decl.Name).Params().Block()
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: adtGen <in.adt> <out.go>")
		os.Exit(2)
	}
	in := os.Args[1]
	out := os.Args[2]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	ast := File{}
	err = parser.ParseBytes(inData, &ast)
	if err != nil {
		panic(err)
	}

	code, err := GenerateDecls(filepath.Base(in), &ast)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(code), 0644)
	if err != nil {
		panic(err)
	}
}
