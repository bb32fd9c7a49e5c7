package span

import "testing"

func TestSourceSetLineLookup(t *testing.T) {
	set := NewSourceSet()
	id := set.Add("main.neve", "let x = 1;\nlet y = 2;\n")

	f := set.File(id)
	if f == nil {
		t.Fatal("expected file to be registered")
	}
	if got := f.Line(1); got != "let x = 1;" {
		t.Errorf("line 1 = %q, want %q", got, "let x = 1;")
	}
	if got := f.Line(2); got != "let y = 2;" {
		t.Errorf("line 2 = %q, want %q", got, "let y = 2;")
	}
	if got := f.Line(3); got != "" {
		t.Errorf("line 3 = %q, want empty", got)
	}
}

func TestJoin(t *testing.T) {
	a := Span{Start: Position{Offset: 5}, End: Position{Offset: 10}}
	b := Span{Start: Position{Offset: 2}, End: Position{Offset: 8}}
	j := Join(a, b)
	if j.Start.Offset != 2 || j.End.Offset != 10 {
		t.Errorf("Join = [%d,%d), want [2,10)", j.Start.Offset, j.End.Offset)
	}
}

func TestDescribeUnregisteredFile(t *testing.T) {
	set := NewSourceSet()
	sp := Span{File: 99, Start: Position{Line: 1, Column: 1}}
	if got := set.Describe(sp); got == "" {
		t.Error("Describe should not return empty for unknown file")
	}
}
