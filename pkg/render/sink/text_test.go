package sink

import (
	"strings"
	"testing"

	"github.com/matzehuels/arborist/pkg/errors"
	"github.com/matzehuels/arborist/pkg/render/layout"
	"github.com/matzehuels/arborist/pkg/tree"
)

func TestTextTwoLevels(t *testing.T) {
	s := NewText()
	drawTree(t, fullTree(t, 2), s)

	if cols, rows := s.Size(); cols != 16 || rows != 8 {
		t.Errorf("Size() = %dx%d, want 16x8", cols, rows)
	}

	out := s.String()
	for _, want := range []string{"3", "2", "1", "/", "\\", "(", ")"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[1], "3") {
		t.Errorf("root label not on row 1:\n%s", out)
	}
	if !strings.Contains(lines[6], "2") || !strings.Contains(lines[6], "1") {
		t.Errorf("leaf labels not on row 6:\n%s", out)
	}
}

func TestTextLabelsOverwriteEdges(t *testing.T) {
	s := NewText()
	drawTree(t, fullTree(t, 4), s)

	out := s.String()
	for _, label := range []string{"15", "8", "1"} {
		if !strings.Contains(out, label) {
			t.Errorf("output missing label %q", label)
		}
	}
}

func TestTextCellSize(t *testing.T) {
	s := NewText(WithCellSize(3, 6))
	if err := s.Resize(30, 60); err != nil {
		t.Fatal(err)
	}
	if cols, rows := s.Size(); cols != 10 || rows != 10 {
		t.Errorf("Size() = %dx%d, want 10x10", cols, rows)
	}
}

func TestTextCellBudget(t *testing.T) {
	g := layout.DefaultGeometry()
	tests := []struct {
		name    string
		levels  int
		opts    []TextOption
		wantErr bool
	}{
		{"default fits 13 levels", 13, nil, false},
		{"default rejects 14 levels", 14, nil, true},
		{"default rejects max levels", tree.MaxLevels, nil, true},
		{"custom budget", 2, []TextOption{WithMaxCells(100)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := g.Size(tt.levels)
			if err != nil {
				t.Fatal(err)
			}
			s := NewText(tt.opts...)
			err = s.Resize(w, h)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Resize: %v", err)
				}
				return
			}
			if got := errors.GetCode(err); got != errors.ErrCodeResourceExhausted {
				t.Fatalf("Resize error code = %q, want %q (err=%v)", got, errors.ErrCodeResourceExhausted, err)
			}
			if cols, rows := s.Size(); cols != 0 || rows != 0 {
				t.Errorf("rejected Resize allocated %dx%d cells", cols, rows)
			}
		})
	}
}
