package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/sponge/ast"
	"github.com/pontaoski/sponge/compile"
	"github.com/pontaoski/sponge/errors"
	"github.com/pontaoski/sponge/interp"
	"github.com/pontaoski/sponge/lexer"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

// outputName picks the binary name for build: the flag, then the manifest,
// then the source file's base name.
func outputName(flag string, doc spongeModule, file string) string {
	switch {
	case flag != "":
		return flag
	case doc.Output != "":
		return doc.Output
	case file != "":
		return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return "a.out"
}

func runProgram(prog *ast.Program, entry string, maxDepth int) error {
	var opts []interp.Option
	if maxDepth > 0 {
		opts = append(opts, interp.WithMaxDepth(maxDepth))
	}

	plog.Infof("running %s", entry)
	_, err := interp.New(prog, os.Stdout, opts...).Call(entry)
	return err
}

func link(module, out string) error {
	fi, err := ioutil.TempFile("", "*.ll")
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer os.Remove(fi.Name())
	defer fi.Close()

	if _, err := fi.WriteString(module); err != nil {
		return tracerr.Wrap(err)
	}

	cmd := exec.Command("clang", "-Wno-override-module", "-o", out, fi.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	plog.Infof("linking %s", out)
	return tracerr.Wrap(cmd.Run())
}

func main() {
	var doc spongeModule

	app := &cli.App{
		Name:  "sponge",
		Usage: "sponge interpreter and compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG or TRACE",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print errors with a stack trace",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			doc, err = loadModule(".")
			if err != nil {
				return err
			}
			if c.IsSet("log-level") {
				doc.LogLevel = c.String("log-level")
			}
			return setupLogging(doc.LogLevel)
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			if c.Bool("trace") {
				tracerr.PrintSourceColor(err)
			} else {
				fmt.Fprintln(os.Stderr, errors.Cause(err))
			}
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "init a directory",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("no module name provided")
					}
					return writeModule(".", spongeModule{Package: name})
				},
			},
			{
				Name:      "run",
				Usage:     "run a file, or the module in the current directory",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name: "entry",
					},
					&cli.IntFlag{
						Name: "max-depth",
					},
				},
				Action: func(c *cli.Context) error {
					if c.IsSet("entry") {
						doc.Entry = c.String("entry")
					}
					if c.IsSet("max-depth") {
						doc.MaxDepth = c.Int("max-depth")
					}

					prog, err := loadProgram(c.Args().First(), doc)
					if err != nil {
						return err
					}
					return runProgram(prog, doc.Entry, doc.MaxDepth)
				},
			},
			{
				Name:      "tokens",
				Usage:     "dump the tokens of a file",
				ArgsUsage: "file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "render",
						Usage: "print the tokens back as source",
					},
				},
				Action: func(c *cli.Context) error {
					file := c.Args().First()
					handle, err := os.Open(file)
					if err != nil {
						return tracerr.Wrap(err)
					}
					defer handle.Close()

					toks, err := lexer.Tokens(handle, file)
					if err != nil {
						return err
					}

					if c.Bool("render") {
						fmt.Print(lexer.Render(toks))
						return nil
					}
					for _, tok := range toks {
						fmt.Printf("%s\t%s\t%s\n", tok.Location.From, tok.Kind, lexer.Lexeme(tok))
					}
					return nil
				},
			},
			{
				Name:      "ast",
				Usage:     "dump the syntax tree",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					prog, err := loadProgram(c.Args().First(), doc)
					if err != nil {
						return err
					}
					repr.Println(prog.Funcs)
					return nil
				},
			},
			{
				Name:      "fmt",
				Usage:     "print a file in canonical form",
				ArgsUsage: "file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "write",
						Usage: "overwrite the file instead of printing",
					},
				},
				Action: func(c *cli.Context) error {
					file := c.Args().First()
					if file == "" {
						return fmt.Errorf("no file provided")
					}
					prog, err := loadProgram(file, doc)
					if err != nil {
						return err
					}

					out := ast.Format(prog)
					if c.Bool("write") {
						return tracerr.Wrap(ioutil.WriteFile(file, []byte(out), 0644))
					}
					fmt.Print(out)
					return nil
				},
			},
			{
				Name:      "check",
				Usage:     "type check without running",
				ArgsUsage: "[file]",
				Action: func(c *cli.Context) error {
					prog, err := loadProgram(c.Args().First(), doc)
					if err != nil {
						return err
					}
					info, err := compile.Check(prog)
					if err != nil {
						return err
					}
					for _, f := range prog.Funcs {
						fmt.Printf("%s() %s\n", f.Name, info.Returns[f.Name])
					}
					return nil
				},
			},
			{
				Name:      "build",
				Usage:     "compile to a native binary with clang",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name: "output",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Value: false,
					},
				},
				Action: func(c *cli.Context) error {
					file := c.Args().First()
					prog, err := loadProgram(file, doc)
					if err != nil {
						return err
					}

					m, err := compile.Compile(prog)
					if err != nil {
						return err
					}
					module := m.String()

					if c.Bool("dump") {
						fmt.Println(module)
						return nil
					}
					return link(module, outputName(c.String("output"), doc, file))
				},
			},
			{
				Name:  "repl",
				Usage: "interactive prompt",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name: "max-depth",
					},
				},
				Action: func(c *cli.Context) error {
					if c.IsSet("max-depth") {
						doc.MaxDepth = c.Int("max-depth")
					}
					return repl(doc.MaxDepth)
				},
			},
		},
	}
	app.Run(os.Args)
}
