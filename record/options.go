package record

import (
	"fmt"
	"strings"
)

// Options tune Where and First.
type Options struct {
	// Limit caps the number of rows fetched. Zero means no limit for Where;
	// First then fetches two rows so that an ambiguous match is detected.
	Limit int

	// OrderBy is an ORDER BY clause such as "created_at DESC, id".
	// Every term must name a declared column, optionally followed by ASC or DESC.
	OrderBy string
}

// orderBy validates a raw ORDER BY clause against the table's columns and
// returns it in normalised form.
func (t *Table[T]) orderBy(clause string) (string, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return "", nil
	}

	terms := strings.Split(clause, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		parts := strings.Fields(term)
		if len(parts) == 0 || len(parts) > 2 {
			return "", fmt.Errorf("%w: %q", ErrInvalidOrderBy, clause)
		}
		if !t.Has(parts[0]) {
			return "", fmt.Errorf("%w: unknown column %q", ErrInvalidOrderBy, parts[0])
		}
		if len(parts) == 1 {
			out = append(out, parts[0])
			continue
		}
		dir := strings.ToUpper(parts[1])
		if dir != "ASC" && dir != "DESC" {
			return "", fmt.Errorf("%w: direction %q", ErrInvalidOrderBy, parts[1])
		}
		out = append(out, parts[0]+" "+dir)
	}
	return strings.Join(out, ", "), nil
}
