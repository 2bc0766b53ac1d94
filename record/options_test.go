package record

import (
	"errors"
	"testing"
)

func TestTable_OrderBy(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		want    string
		wantErr bool
	}{
		{"empty", "", "", false},
		{"single column", "name", "name", false},
		{"direction normalised", "created_at desc", "created_at DESC", false},
		{"several terms", " status ASC ,  id desc ", "status ASC, id DESC", false},
		{"unknown column", "password", "", true},
		{"bad direction", "name sideways", "", true},
		{"injection attempt", "id; DROP TABLE users", "", true},
		{"expression", "RAND()", "", true},
		{"empty term", "name,", "", true},
		{"too many words", "name ASC NULLS", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := users.orderBy(tt.clause)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOrderBy) {
					t.Errorf("orderBy(%q) error = %v, want ErrInvalidOrderBy", tt.clause, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("orderBy(%q) error = %v", tt.clause, err)
			}
			if got != tt.want {
				t.Errorf("orderBy(%q) = %q, want %q", tt.clause, got, tt.want)
			}
		})
	}
}
