package convert

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/and161185/passvault/internal/errs"
	model "github.com/and161185/passvault/internal/model"
)

// FromCSV reads records of the form key,value[,notes].
// A first row reading "key,value[,notes]" (any case) is treated as a header.
// Blank lines are ignored.
func FromCSV(r io.Reader) ([]model.NewEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := []model.NewEntry{}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: invalid csv at record %d", errs.ErrInvalidArgument, row)
		}
		if row == 1 && isHeader(rec) {
			continue
		}
		if len(rec) < 2 || len(rec) > 3 {
			return nil, fmt.Errorf("%w: invalid csv at record %d: want 2 or 3 fields, got %d", errs.ErrInvalidArgument, row, len(rec))
		}
		ne := model.NewEntry{Key: strings.TrimSpace(rec[0]), Value: rec[1]}
		if len(rec) == 3 {
			ne.Notes = OptionalNotes(rec[2])
		}
		out = append(out, ne)
	}
	return out, nil
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rec[0]), "key") &&
		strings.EqualFold(strings.TrimSpace(rec[1]), "value")
}
