package nar

import (
	"bytes"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func sampleTree() *Node {
	return &Node{
		Type: Directory,
		Entries: []Entry{
			{Name: "bin", Node: &Node{
				Type: Directory,
				Entries: []Entry{
					{Name: "hello", Node: &Node{Type: Regular, Executable: true, Contents: []byte("#!/bin/sh\necho hi\n")}},
				},
			}},
			{Name: "share", Node: &Node{Type: Directory}},
			{Name: "lib", Node: &Node{Type: Regular, Contents: []byte("not really a lib, just bytes")}},
			{Name: "current", Node: &Node{Type: Symlink, Target: "bin/hello"}},
		},
	}
}

// TestEncodeDecodeRoundTrip exercises NAR's determinism property:
// encoding a tree and decoding it back must reproduce the same
// structure, regardless of the source Entries order (Encode sorts by
// name before writing).
func TestEncodeDecodeRoundTrip(t *testing.T) {
	root := sampleTree()

	var buf bytes.Buffer
	if err := Encode(&buf, root); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := sampleTree()
	sortEntries(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot:  %+v\nwant: %+v", got, want)
	}
}

// TestEncodeIsOrderIndependent confirms that two trees differing only
// in Entries source order produce byte-identical NAR streams, since
// store content hashes are computed over this encoding.
func TestEncodeIsOrderIndependent(t *testing.T) {
	a := sampleTree()
	b := sampleTree()
	b.Entries[0], b.Entries[2] = b.Entries[2], b.Entries[0]

	var bufA, bufB bytes.Buffer
	if err := Encode(&bufA, a); err != nil {
		t.Fatalf("Encode a: %v", err)
	}
	if err := Encode(&bufB, b); err != nil {
		t.Fatalf("Encode b: %v", err)
	}
	if !bytes.Equal(bufA.Bytes(), bufB.Bytes()) {
		t.Fatalf("encoding depends on Entries source order")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := writeString(&buf, "not-nix-archive-1"); err != nil {
		t.Fatalf("writeString: %v", err)
	}
	if _, err := Decode(&buf); err == nil {
		t.Fatalf("expected bad-magic error")
	}
}

// TestWriteTreeReadTreeRoundTrip exercises the filesystem-facing half:
// materializing a Node tree onto disk and reading it back should
// reproduce the same structure (mode/executable bit included).
func TestWriteTreeReadTreeRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	root := sampleTree()

	if err := WriteTree(dir, root); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	got, err := ReadTree(dir)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	var bufGot, bufWant bytes.Buffer
	if err := Encode(&bufGot, got); err != nil {
		t.Fatalf("Encode got: %v", err)
	}
	if err := Encode(&bufWant, root); err != nil {
		t.Fatalf("Encode want: %v", err)
	}
	if !bytes.Equal(bufGot.Bytes(), bufWant.Bytes()) {
		t.Fatalf("WriteTree/ReadTree round trip changed the tree's NAR encoding")
	}
}

func sortEntries(n *Node) {
	if n.Type != Directory {
		return
	}
	for i := 1; i < len(n.Entries); i++ {
		for j := i; j > 0 && n.Entries[j-1].Name > n.Entries[j].Name; j-- {
			n.Entries[j-1], n.Entries[j] = n.Entries[j], n.Entries[j-1]
		}
	}
	for _, e := range n.Entries {
		sortEntries(e.Node)
	}
}

// TestEncodeSnapshot pins the exact byte layout: length-prefixed
// strings, 8-byte padding, sorted directory entries. Any change to the
// golden output changes every store hash in existence.
func TestEncodeSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleTree()); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("%q", buf.Bytes()))
}
