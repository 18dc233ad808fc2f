package spreadsheet

import (
	"encoding/json"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/ulikunitz/xz"

	"github.com/phillip-england/employeems/internal/employee"
)

// Archive is the snapshot format written by WriteArchive.
type Archive struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Count      int                 `json:"count"`
	Employees  []employee.Employee `json:"employees"`
}

// WriteArchive writes an xz-compressed JSON snapshot of employees.
func WriteArchive(w io.Writer, employees []employee.Employee, now time.Time) error {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "open xz writer")
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Archive{ExportedAt: now.UTC(), Count: len(employees), Employees: employees}); err != nil {
		_ = zw.Close()
		return errors.Wrap(err, "encode archive")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close xz writer")
	}
	return nil
}

func ReadArchive(r io.Reader) (Archive, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return Archive{}, errors.Wrap(err, "open xz reader")
	}
	var a Archive
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		return Archive{}, errors.Wrap(err, "decode archive")
	}
	return a, nil
}
