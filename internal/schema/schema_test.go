package schema

import (
	"reflect"
	"testing"
)

func TestNew_PreservesOrder(t *testing.T) {
	t.Parallel()
	s := New([]string{"volume", "intensity"}, "muscle_group")

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	want := []string{"volume", "intensity", "muscle_group"}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
	if s.Fields[2].Kind != Categorical {
		t.Errorf("Fields[2].Kind = %v, want %v", s.Fields[2].Kind, Categorical)
	}
}

func TestKindFilters(t *testing.T) {
	t.Parallel()
	s := New([]string{"a", "b"}, "c")

	if got := s.NumericNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("NumericNames = %v", got)
	}
	if got := s.CategoricalNames(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("CategoricalNames = %v", got)
	}
}
