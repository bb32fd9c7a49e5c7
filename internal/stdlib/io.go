package stdlib

import (
	"bufio"
	"fmt"
	"os"

	"github.com/neve-lang/neve/internal/eval"
)

// ioBuiltins is the only impure group in Prelude(): print, println,
// read_line, read_file, write_file. The store and fetch builtins that
// PreludeWithRuntime adds (derivation.go) have effects as well.
func ioBuiltins() map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"print":     builtin("print", 1, biPrint),
		"println":   builtin("println", 1, biPrintln),
		"read_line": builtin("read_line", 0, biReadLine),
		"read_file": builtin("read_file", 1, biReadFile),
		"write_file": builtin("write_file", 2, biWriteFile),
	}
}

func biPrint(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("print", 1, len(args))
	}
	fmt.Fprint(os.Stdout, eval.Show(args[0]))
	return eval.Unit{}, nil
}

func biPrintln(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("println", 1, len(args))
	}
	fmt.Fprintln(os.Stdout, eval.Show(args[0]))
	return eval.Unit{}, nil
}

var stdin = bufio.NewReader(os.Stdin)

func biReadLine(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 0 {
		return nil, wantArity("read_line", 0, len(args))
	}
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return &eval.Ctor{Tag: "None"}, nil
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return &eval.Ctor{Tag: "Some", Payload: []eval.Value{eval.Str(line)}}, nil
}

func biReadFile(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("read_file", 1, len(args))
	}
	p, err := asPathlike("read_file", args, 0)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return &eval.Ctor{Tag: "Err", Payload: []eval.Value{eval.Str(err.Error())}}, nil
	}
	return &eval.Ctor{Tag: "Ok", Payload: []eval.Value{eval.Str(data)}}, nil
}

func biWriteFile(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("write_file", 2, len(args))
	}
	p, err := asPathlike("write_file", args, 0)
	if err != nil {
		return nil, err
	}
	content, err := asStr("write_file", args, 1)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return &eval.Ctor{Tag: "Err", Payload: []eval.Value{eval.Str(err.Error())}}, nil
	}
	return &eval.Ctor{Tag: "Ok", Payload: []eval.Value{eval.Unit{}}}, nil
}

// asPathlike accepts either a Path or a String argument, since file I/O is
// commonly invoked with a plain string literal as well as a Path value.
func asPathlike(name string, args []eval.Value, i int) (string, error) {
	switch v := args[i].(type) {
	case eval.PathV:
		return string(v), nil
	case eval.Str:
		return string(v), nil
	default:
		return "", errf("%s() expects Path or String for argument %d, got %s", name, i+1, args[i].Type())
	}
}
