// Package derivation implements Neve's derivation record: an immutable,
// content-addressed description of how to build one or more outputs
// from inputs, following the "hash the canonical encoding, derive the
// output path from the hash" strategy, using a JSON-like, sorted-keys,
// numbers-as-strings encoding.
package derivation

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/neve-lang/neve/internal/hash"
)

// InputRef is one derivation input: another derivation's store-path hash
// plus which of its outputs this derivation consumes, or a bare
// fetched-source store path when Outputs is empty.
type InputRef struct {
	Path    string   // store path name ("<hash>-<name>") of the input
	Outputs []string // output names consumed, empty for a plain source input
}

// EnvVar is one entry of the derivation's environment map. Kept as an
// ordered slice on the Go struct for deterministic iteration in Go code,
// but permuting the source order of commutative fields must not change
// the derivation hash, so the *encoding* sorts these before hashing —
// Canonical does that.
type EnvVar struct {
	Key   string
	Value string
}

// Derivation is Neve's fully specified build recipe.
type Derivation struct {
	Name          string
	Version       string
	System        string // "<arch>-<os>" convention
	Inputs        []InputRef
	Environment   []EnvVar
	BuildCommand  string
	OutputNames   []string // at least "out"
	HashAlgorithm string   // "blake3" in this implementation; kept as a field for forward compatibility with an algorithm-agnostic encoding
	ExpectedHash  string   // non-empty marks this derivation fixed-output (hex-encoded)
}

// IsFixedOutput reports whether d declares an expected content hash —
// the only derivations the sandbox grants network access to.
func (d *Derivation) IsFixedOutput() bool {
	return d.ExpectedHash != ""
}

// sortedEnv returns d.Environment sorted by key, leaving d unmodified.
func (d *Derivation) sortedEnv() []EnvVar {
	out := append([]EnvVar(nil), d.Environment...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// sortedInputs returns d.Inputs sorted by path, leaving d unmodified.
// Inputs are conceptually a set — the ordered field describes the tuple
// of path+outputs, not that build-author-supplied order is significant —
// so sorting here is what gives permuted input order the same hash too.
func (d *Derivation) sortedInputs() []InputRef {
	out := append([]InputRef(nil), d.Inputs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	for i := range out {
		outs := append([]string(nil), out[i].Outputs...)
		sort.Strings(outs)
		out[i].Outputs = outs
	}
	return out
}

// Canonical renders d as a JSON-like, sorted-keys, numbers-as-strings
// encoding: top-level keys in lexicographic order, list elements in
// (now-sorted) order, every numeric-looking value quoted as a string so
// a hash never depends on a host's number formatting.
func (d *Derivation) Canonical() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeKV := func(key string, write func()) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, key)
		buf.WriteByte(':')
		write()
	}

	writeKV("buildCommand", func() { writeJSONString(&buf, d.BuildCommand) })

	writeKV("environment", func() {
		buf.WriteByte('{')
		for i, e := range d.sortedEnv() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(&buf, e.Key)
			buf.WriteByte(':')
			writeJSONString(&buf, e.Value)
		}
		buf.WriteByte('}')
	})

	if d.ExpectedHash != "" {
		writeKV("expectedHash", func() { writeJSONString(&buf, d.ExpectedHash) })
	}

	writeKV("hashAlgorithm", func() { writeJSONString(&buf, d.HashAlgorithm) })

	writeKV("inputs", func() {
		buf.WriteByte('[')
		for i, in := range d.sortedInputs() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('{')
			buf.WriteString(`"path":`)
			writeJSONString(&buf, in.Path)
			buf.WriteString(`,"outputs":[`)
			for j, o := range in.Outputs {
				if j > 0 {
					buf.WriteByte(',')
				}
				writeJSONString(&buf, o)
			}
			buf.WriteString("]}")
		}
		buf.WriteByte(']')
	})

	writeKV("name", func() { writeJSONString(&buf, d.Name) })

	writeKV("outputNames", func() {
		names := append([]string(nil), d.OutputNames...)
		sort.Strings(names)
		buf.WriteByte('[')
		for i, n := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(&buf, n)
		}
		buf.WriteByte(']')
	})

	writeKV("system", func() { writeJSONString(&buf, d.System) })
	writeKV("version", func() { writeJSONString(&buf, d.Version) })

	buf.WriteByte('}')
	return buf.Bytes()
}

// writeJSONString writes s as a minimally-escaped JSON string literal.
// Derivation field values are implementation-controlled (names, build
// commands, env values the evaluator has already forced to String), so
// this only needs to handle the characters that would otherwise break
// the encoding, not full Unicode escaping.
func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// Hash returns the BLAKE3 digest of d's canonical encoding — the
// input-addressed identity: the hash in a store-path name is a function
// only of the derivation's canonical form and the hashes of its inputs.
func (d *Derivation) Hash() hash.Digest {
	return hash.Sum(d.Canonical())
}

// OutputPath computes the store-path name ("<hash>-<name>[-<output>]")
// for the named output. For a fixed-output derivation the hash comes
// from ExpectedHash; otherwise from d.Hash() and the output name.
func (d *Derivation) OutputPath(output string) (string, error) {
	found := false
	for _, o := range d.OutputNames {
		if o == output {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("derivation %q has no output %q", d.Name, output)
	}

	label := d.Name
	if output != "out" {
		label = d.Name + "-" + output
	}

	if d.IsFixedOutput() {
		return fixedOutputDigest(d.ExpectedHash).Base32() + "-" + label, nil
	}
	return d.Hash().Base32() + "-" + label, nil
}

// fixedOutputDigest re-derives a 32-byte digest from a hex-encoded
// expected hash for use in OutputPath. Fixed-output hashes may be
// supplied in any hex length (sha256 callers commonly pass 64 hex
// chars); this hashes the raw hex text itself down to Size bytes so
// store-path rendering never depends on the verification algorithm's
// native digest size.
func fixedOutputDigest(expectedHex string) hash.Digest {
	return hash.Sum([]byte(expectedHex))
}
