package stdlib

import (
	"context"
	"fmt"

	"github.com/neve-lang/neve/internal/builder"
	"github.com/neve-lang/neve/internal/derivation"
	"github.com/neve-lang/neve/internal/eval"
	"github.com/neve-lang/neve/internal/fetch"
	"github.com/neve-lang/neve/internal/store"
)

// Runtime carries the store/builder/fetcher triple that the derivation and
// store.* builtins need but the pure modules (lists, strings, math, ...) do
// not — kept out of Prelude()'s signature so every existing caller
// (internal/eval/eval_test.go, internal/checker/checker_test.go) continues
// to exercise the language core without standing up a filesystem store.
type Runtime struct {
	Store   *store.Store
	Builder *builder.Builder
	Fetch   *fetch.Fetcher
}

// PreludeWithRuntime returns Prelude()'s builtins plus the derivation and
// store.* builtins, bound to rt. pkg/neve's Eval/Run/Check facade is the
// real caller; it is the only place in this repo that actually needs a
// populated Store.
func PreludeWithRuntime(rt *Runtime) map[string]*eval.Builtin {
	out := Prelude()
	for name, b := range derivationBuiltins(rt) {
		out[name] = b
	}
	for name, b := range storeBuiltins(rt) {
		out[name] = b
	}
	return out
}

// derivationBuiltins supplies the single `derivation` constructor: it
// accepts a record with the canonical fields and returns a derivation
// value. Realize is deferred: constructing the value never touches the
// store or the builder, only forcing it into a string context does
// (eval.Derivation.OutPath, called from the evaluator's
// string-interpolation/elimination path).
func derivationBuiltins(rt *Runtime) map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"derivation": builtin("derivation", 1, func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
			return biDerivation(ev, rt, args)
		}),
	}
}

func biDerivation(ev *eval.Evaluator, rt *Runtime, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("derivation", 1, len(args))
	}
	rec, ok := args[0].(*eval.Record)
	if !ok {
		return nil, errf("derivation() expects a Record, got %s", args[0].Type())
	}

	name, err := recordStr(rec, "name", true)
	if err != nil {
		return nil, err
	}
	system, err := recordStr(rec, "system", false)
	if err != nil {
		return nil, err
	}
	if system == "" {
		system = "x86_64-linux"
	}
	version, err := recordStr(rec, "version", false)
	if err != nil {
		return nil, err
	}
	builderCmd, err := recordStr(rec, "builder", true)
	if err != nil {
		return nil, err
	}
	expectedHash, err := recordStr(rec, "expected_hash", false)
	if err != nil {
		return nil, err
	}

	outputNames := []string{"out"}
	if outsV, ok := rec.Get("outputs"); ok {
		lst, ok := outsV.(*eval.List)
		if !ok {
			return nil, errf("derivation(): \"outputs\" must be a List of String")
		}
		outputNames = nil
		for cur := lst; cur != nil; cur = cur.Tail {
			s, ok := cur.Head.(eval.Str)
			if !ok {
				return nil, errf("derivation(): \"outputs\" must be a List of String")
			}
			outputNames = append(outputNames, string(s))
		}
	}

	var envVars []derivation.EnvVar
	if envV, ok := rec.Get("env"); ok {
		envRec, ok := envV.(*eval.Record)
		if !ok {
			return nil, errf("derivation(): \"env\" must be a Record")
		}
		for _, f := range envRec.Fields {
			envVars = append(envVars, derivation.EnvVar{Key: f.Name, Value: eval.Show(f.Value)})
		}
	}

	var inputs []derivation.InputRef
	inputDerivs := map[string]*eval.Derivation{}
	if inV, ok := rec.Get("inputs"); ok {
		lst, ok := inV.(*eval.List)
		if !ok {
			return nil, errf("derivation(): \"inputs\" must be a List")
		}
		for cur := lst; cur != nil; cur = cur.Tail {
			switch iv := cur.Head.(type) {
			case *eval.Derivation:
				// The path is only known once the input is realized; record a
				// placeholder keyed by the derivation's identity and patch it in
				// at Realize time (see (*Derivation).Realize closure below).
				key := fmt.Sprintf("derivation:%p", iv)
				inputDerivs[key] = iv
				inputs = append(inputs, derivation.InputRef{Path: key, Outputs: []string{"out"}})
			case eval.PathV:
				inputs = append(inputs, derivation.InputRef{Path: string(iv)})
			default:
				return nil, errf("derivation(): \"inputs\" elements must be Derivation or Path, got %s", cur.Head.Type())
			}
		}
	}

	d := &derivation.Derivation{
		Name:          name,
		Version:       version,
		System:        system,
		Environment:   envVars,
		BuildCommand:  builderCmd,
		Inputs:        inputs,
		OutputNames:   outputNames,
		HashAlgorithm: "blake3",
		ExpectedHash:  expectedHash,
	}

	return &eval.Derivation{
		Name:   name,
		Fields: rec,
		Realize: func() (eval.PathV, error) {
			if rt == nil || rt.Builder == nil {
				return "", fmt.Errorf("derivation %q: no builder configured", name)
			}
			resolved := *d
			resolved.Inputs = make([]derivation.InputRef, len(d.Inputs))
			inputPaths := map[string]string{}
			for i, in := range d.Inputs {
				if dep, ok := inputDerivs[in.Path]; ok {
					depPath, err := dep.OutPath()
					if err != nil {
						return "", fmt.Errorf("derivation %q: input %q: %w", name, dep.Name, err)
					}
					resolved.Inputs[i] = derivation.InputRef{Path: string(depPath), Outputs: in.Outputs}
					inputPaths[string(depPath)] = string(depPath)
				} else {
					resolved.Inputs[i] = in
				}
			}
			outs, err := rt.Builder.Realize(context.Background(), &resolved, inputPaths)
			if err != nil {
				return "", err
			}
			outName, ok := outs["out"]
			if !ok {
				for _, v := range outs {
					return eval.PathV(v), nil
				}
				return "", fmt.Errorf("derivation %q produced no outputs", name)
			}
			return eval.PathV(outName), nil
		},
	}, nil
}

func recordStr(rec *eval.Record, field string, required bool) (string, error) {
	v, ok := rec.Get(field)
	if !ok {
		if required {
			return "", errf("derivation(): missing required field %q", field)
		}
		return "", nil
	}
	s, ok := v.(eval.Str)
	if !ok {
		return "", errf("derivation(): field %q must be a String, got %s", field, v.Type())
	}
	return string(s), nil
}

// storeBuiltins wires the store.* functions directly to rt.Store.
func storeBuiltins(rt *Runtime) map[string]*eval.Builtin {
	return map[string]*eval.Builtin{
		"store_add_file": builtin("store_add_file", 2, func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
			return biStoreAddFile(rt, args)
		}),
		"store_add_directory": builtin("store_add_directory", 2, func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
			return biStoreAddDirectory(rt, args)
		}),
		"store_query_references": builtin("store_query_references", 1, func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
			return biStoreQueryReferences(rt, args)
		}),
		"store_gc": builtin("store_gc", 1, func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
			return biStoreGC(rt, args)
		}),
		"fetch_url": builtin("fetch_url", 3, func(ev *eval.Evaluator, args []eval.Value) (eval.Value, error) {
			return biFetchURL(rt, args)
		}),
	}
}

func requireStore(rt *Runtime) (*store.Store, error) {
	if rt == nil || rt.Store == nil {
		return nil, fmt.Errorf("store.* builtins require a configured store")
	}
	return rt.Store, nil
}

func biStoreAddFile(rt *Runtime, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("store_add_file", 2, len(args))
	}
	st, err := requireStore(rt)
	if err != nil {
		return nil, err
	}
	content, err := asStr("store_add_file", args, 0)
	if err != nil {
		return nil, err
	}
	name, err := asStr("store_add_file", args, 1)
	if err != nil {
		return nil, err
	}
	pathName, err := st.AddFile([]byte(content), string(name))
	if err != nil {
		return nil, err
	}
	return eval.PathV(pathName), nil
}

func biStoreAddDirectory(rt *Runtime, args []eval.Value) (eval.Value, error) {
	if len(args) != 2 {
		return nil, wantArity("store_add_directory", 2, len(args))
	}
	st, err := requireStore(rt)
	if err != nil {
		return nil, err
	}
	dir, err := asPathlike("store_add_directory", args, 0)
	if err != nil {
		return nil, err
	}
	name, err := asStr("store_add_directory", args, 1)
	if err != nil {
		return nil, err
	}
	pathName, err := st.AddDirectory(dir, string(name))
	if err != nil {
		return nil, err
	}
	return eval.PathV(pathName), nil
}

func biStoreQueryReferences(rt *Runtime, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("store_query_references", 1, len(args))
	}
	st, err := requireStore(rt)
	if err != nil {
		return nil, err
	}
	p, err := asPathlike("store_query_references", args, 0)
	if err != nil {
		return nil, err
	}
	refs, err := st.QueryReferences(p)
	if err != nil {
		return nil, err
	}
	out := make([]eval.Value, len(refs))
	for i, r := range refs {
		out[i] = eval.PathV(r)
	}
	return eval.FromSlice(out), nil
}

func biStoreGC(rt *Runtime, args []eval.Value) (eval.Value, error) {
	if len(args) != 1 {
		return nil, wantArity("store_gc", 1, len(args))
	}
	st, err := requireStore(rt)
	if err != nil {
		return nil, err
	}
	lst, err := asList("store_gc", args, 0)
	if err != nil {
		return nil, err
	}
	var roots []string
	for cur := lst; cur != nil; cur = cur.Tail {
		p, ok := cur.Head.(eval.PathV)
		if !ok {
			return nil, errf("store_gc() expects a List of Path, got element of type %s", cur.Head.Type())
		}
		roots = append(roots, string(p))
	}
	removed, err := st.GC(roots)
	if err != nil {
		return nil, err
	}
	out := make([]eval.Value, len(removed))
	for i, r := range removed {
		out[i] = eval.PathV(r)
	}
	return eval.FromSlice(out), nil
}

func biFetchURL(rt *Runtime, args []eval.Value) (eval.Value, error) {
	if len(args) != 3 {
		return nil, wantArity("fetch_url", 3, len(args))
	}
	if rt == nil || rt.Fetch == nil {
		return nil, errf("fetch_url() requires a configured fetcher")
	}
	url, err := asStr("fetch_url", args, 0)
	if err != nil {
		return nil, err
	}
	name, err := asStr("fetch_url", args, 1)
	if err != nil {
		return nil, err
	}
	expectedHash, err := asStr("fetch_url", args, 2)
	if err != nil {
		return nil, err
	}
	pathName, err := rt.Fetch.Fetch(context.Background(), fetch.Spec{
		Kind: "url", URL: string(url), Name: string(name), ExpectedHash: string(expectedHash),
	})
	if err != nil {
		return nil, err
	}
	return eval.PathV(pathName), nil
}
