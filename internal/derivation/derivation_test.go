package derivation

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func sampleDerivation() *Derivation {
	return &Derivation{
		Name:         "hello",
		Version:      "1.0",
		System:       "x86_64-linux",
		BuildCommand: "gcc -o $out/bin/hello hello.c",
		OutputNames:  []string{"out"},
		Environment: []EnvVar{
			{Key: "CFLAGS", Value: "-O2"},
			{Key: "PATH", Value: "/usr/bin"},
		},
		Inputs: []InputRef{
			{Path: "abc123-glibc", Outputs: []string{"out"}},
			{Path: "def456-gcc", Outputs: []string{"out", "lib"}},
		},
		HashAlgorithm: "blake3",
	}
}

func TestCanonicalSnapshot(t *testing.T) {
	d := sampleDerivation()
	snaps.MatchSnapshot(t, string(d.Canonical()))
}

// Permuting the source order of commutative fields (env entries, inputs)
// must not change the canonical encoding or the resulting hash.
func TestCanonicalIgnoresFieldOrder(t *testing.T) {
	a := sampleDerivation()
	b := sampleDerivation()
	b.Environment = []EnvVar{
		{Key: "PATH", Value: "/usr/bin"},
		{Key: "CFLAGS", Value: "-O2"},
	}
	b.Inputs = []InputRef{
		{Path: "def456-gcc", Outputs: []string{"lib", "out"}},
		{Path: "abc123-glibc", Outputs: []string{"out"}},
	}

	if string(a.Canonical()) != string(b.Canonical()) {
		t.Fatalf("canonical encoding depends on field order:\na: %s\nb: %s", a.Canonical(), b.Canonical())
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("hash depends on field order")
	}
}

func TestOutputPathFixedOutput(t *testing.T) {
	d := sampleDerivation()
	d.ExpectedHash = "deadbeef"

	p1, err := d.OutputPath("out")
	if err != nil {
		t.Fatalf("OutputPath: %v", err)
	}

	d2 := sampleDerivation()
	d2.ExpectedHash = "deadbeef"
	d2.BuildCommand = "totally different builder, doesn't matter for a fixed-output derivation"
	p2, err := d2.OutputPath("out")
	if err != nil {
		t.Fatalf("OutputPath: %v", err)
	}

	if p1 != p2 {
		t.Fatalf("fixed-output path should depend only on expected_hash+name, got %q vs %q", p1, p2)
	}
}

func TestOutputPathUnknownOutput(t *testing.T) {
	d := sampleDerivation()
	if _, err := d.OutputPath("nonexistent"); err == nil {
		t.Fatalf("expected error for unknown output name")
	}
}
