package employee

import (
	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"
)

// EditState is either Viewing or Editing. The canonical record is never
// mutated in place; a draft is either committed with the server's copy or
// discarded explicitly.
type EditState interface {
	Current() Employee
	isEditState()
}

type Viewing struct {
	Record Employee
}

type Editing struct {
	Record Employee
	Draft  Employee
}

func (Viewing) isEditState() {}
func (Editing) isEditState() {}

func (v Viewing) Current() Employee { return v.Record }
func (e Editing) Current() Employee { return e.Draft }

// BeginEdit enters edit mode. A previously kept draft for the same record is
// resumed; otherwise the draft starts as a copy of the record.
func (v Viewing) BeginEdit(previous *Employee) Editing {
	draft := v.Record
	if previous != nil && previous.ID == v.Record.ID {
		draft = *previous
	}
	return Editing{Record: v.Record, Draft: draft}
}

// Update replaces the draft with edited values. Identity and server-owned
// fields always come from the record.
func (e Editing) Update(edited Employee) Editing {
	edited.ID = e.Record.ID
	edited.Role = e.Record.Role
	edited.CreatedAt = e.Record.CreatedAt
	edited.UpdatedAt = e.Record.UpdatedAt
	if edited.Image == "" {
		edited.Image = e.Record.Image
	}
	return Editing{Record: e.Record, Draft: edited}
}

// Cancel leaves edit mode. The returned draft is the one to keep for a later
// BeginEdit; it is nil when resetDraft is set or nothing was changed.
func (e Editing) Cancel(resetDraft bool) (Viewing, *Employee) {
	if resetDraft || !e.Dirty() {
		return Viewing{Record: e.Record}, nil
	}
	draft := e.Draft
	return Viewing{Record: e.Record}, &draft
}

// Commit exits edit mode showing the copy returned by the server.
func (e Editing) Commit(saved Employee) Viewing {
	return Viewing{Record: saved}
}

// Changes lists the JSON pointer paths where the draft differs from the record.
func (e Editing) Changes() ([]string, error) {
	patch, err := jsondiff.Compare(e.Record, e.Draft)
	if err != nil {
		return nil, errors.Wrap(err, "compare draft")
	}
	paths := make([]string, 0, len(patch))
	for _, op := range patch {
		paths = append(paths, op.Path)
	}
	return paths, nil
}

func (e Editing) Dirty() bool {
	changes, err := e.Changes()
	if err != nil {
		return true
	}
	return len(changes) > 0
}

func View(record Employee) Viewing {
	return Viewing{Record: record}
}
