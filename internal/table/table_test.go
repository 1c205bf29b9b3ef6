package table

import (
	"math"
	"testing"
	"time"
)

func TestValue_IsMissing(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want bool
	}{
		{"zero value", Value{}, true},
		{"missing", Missing(), true},
		{"NaN", Number(math.NaN()), true},
		{"number", Number(0), false},
		{"empty string", String(""), false},
		{"bool", Bool(false), false},
		{"time", Time(time.Time{}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.IsMissing(); got != tt.want {
				t.Errorf("IsMissing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{Missing(), ""},
		{Number(5), "5"},
		{Number(2.5), "2.5"},
		{Number(math.NaN()), ""},
		{String("Dr. A"), "Dr. A"},
		{Bool(true), "True"},
		{Time(time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC)), "2023-12-14 00:00:00"},
	}

	for _, tt := range tests {
		if got := tt.in.Text(); got != tt.want {
			t.Errorf("%s.Text() = %q, want %q", tt.in.Kind, got, tt.want)
		}
	}
}

func TestValue_Float(t *testing.T) {
	tests := []struct {
		in     Value
		want   float64
		wantOK bool
	}{
		{Number(3), 3, true},
		{String(" 4.5 "), 4.5, true},
		{String("1e3"), 1000, true},
		{String("nan"), 0, false},
		{String("five"), 0, false},
		{String(""), 0, false},
		{Bool(true), 1, true},
		{Missing(), 0, false},
		{Time(time.Now()), 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.in.Float()
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("%+v.Float() = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSheet_AddRow(t *testing.T) {
	s := New("s", "a", "b")
	s.AddRow(String("x"))
	s.AddRow(String("y"), Number(1), Number(2))

	if len(s.Rows[0]) != 2 || len(s.Rows[1]) != 2 {
		t.Fatalf("rows not fitted to columns: %v", s.Rows)
	}

	if got := s.Rows[1].At(1); got != Number(1) {
		t.Errorf("Rows[1].At(1) = %+v, want 1", got)
	}

	if !s.Rows[0].At(1).IsMissing() || !s.Rows[0].At(5).IsMissing() || !s.Rows[0].At(-1).IsMissing() {
		t.Error("padded and out of range cells should be missing")
	}
}

func TestSheet_ProjectAndClone(t *testing.T) {
	s := New("s", "a", "b", "c")
	s.AddRow(String("1"), String("2"), String("3"))

	p := s.Project([]int{2, 0}, []string{"C", "A"})
	if p.Columns[0] != "C" || p.Rows[0][0] != String("3") || p.Rows[0][1] != String("1") {
		t.Errorf("Project = %+v", p)
	}

	p.Rows[0][0] = Missing()
	if s.Rows[0][2] != String("3") {
		t.Error("Project shares row storage with its source")
	}

	c := s.Clone()
	c.Columns[0] = "changed"
	c.Rows[0][0] = Missing()

	if s.Columns[0] != "a" || s.Rows[0][0] != String("1") {
		t.Error("Clone shares storage with its source")
	}
}

func TestUniqueLabel(t *testing.T) {
	taken := map[string]bool{"a": true, "a.1": true}

	if got := UniqueLabel("b", taken); got != "b" {
		t.Errorf("UniqueLabel(b) = %s", got)
	}

	if got := UniqueLabel("a", taken); got != "a.2" {
		t.Errorf("UniqueLabel(a) = %s, want a.2", got)
	}
}
