package rewrite

import "testing"

func TestTempName(t *testing.T) {
	tests := []struct {
		line, col int
		want      string
	}{
		{11, 10, "__rhs_first_assign_rhs_l11_c10"},
		{1, 1, "__rhs_first_assign_rhs_l1_c1"},
		{1024, 77, "__rhs_first_assign_rhs_l1024_c77"},
	}

	for _, tt := range tests {
		if got := TempName(tt.line, tt.col); got != tt.want {
			t.Errorf("TempName(%d, %d) = %q, want %q", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestTempName_DistinctPositions(t *testing.T) {
	// l1_c12 and l11_c2 must not collide.
	if TempName(1, 12) == TempName(11, 2) {
		t.Errorf("positions 1:12 and 11:2 share a name")
	}
	if TempName(3, 4) == TempName(4, 3) {
		t.Errorf("positions 3:4 and 4:3 share a name")
	}
}

func TestIsTempName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{TempName(9, 8), true},
		{"__rhs_first_assign_rhs_l0_c0", true},
		{"__rhs_first_assign_rhs", false},
		{"__rhs_first_assign_rhs_l9", false},
		{"__rhs_first_assign_rhs_l9_c", false},
		{"__rhs_first_assign_rhs_lx_c8", false},
		{"__rhs_first_assign_rhs_l9_c8x", false},
		{"tmp", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTempName(tt.name); got != tt.want {
			t.Errorf("IsTempName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
