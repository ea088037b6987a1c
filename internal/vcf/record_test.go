package vcf

import "testing"

func TestRecord_IsBlockSubstitution(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alts []string
		want bool
	}{
		{"SNV", "A", []string{"G"}, true},
		{"MNV", "AC", []string{"GT"}, true},
		{"multi-allelic MNV", "AC", []string{"GT", "AT"}, true},
		{"deletion", "AT", []string{"A"}, false},
		{"insertion", "A", []string{"AT"}, false},
		{"mixed lengths", "AC", []string{"GT", "A"}, false},
		{"no alts", "AC", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Ref: tt.ref, Alts: tt.alts}
			if got := r.IsBlockSubstitution(); got != tt.want {
				t.Errorf("IsBlockSubstitution() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendInfoFlag(t *testing.T) {
	tests := []struct {
		info string
		want string
	}{
		{"TC=30", "TC=30;FromComplex"},
		{"TC=30;DB", "TC=30;DB;FromComplex"},
		{".", "FromComplex"},
		{"", "FromComplex"},
	}

	for _, tt := range tests {
		if got := AppendInfoFlag(tt.info, "FromComplex"); got != tt.want {
			t.Errorf("AppendInfoFlag(%q) = %q, want %q", tt.info, got, tt.want)
		}
	}
}
