package operation

import (
	"fmt"
	"slices"

	"github.com/kode4food/argyll/editor/pkg/api"
)

func addNote(v *api.FlowVersion, o api.AddNote) (*api.FlowVersion, error) {
	if o.Note.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidNote)
	}
	if _, ok := v.Note(o.Note.ID); ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNote, o.Note.ID)
	}
	res := v.Copy()
	res.Notes = append(slices.Clone(v.Notes), o.Note)
	return res, nil
}

func updateNote(v *api.FlowVersion, o api.UpdateNote) (*api.FlowVersion, error) {
	idx := noteIndex(v.Notes, o.Note.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, o.Note.ID)
	}
	res := v.Copy()
	res.Notes = slices.Clone(v.Notes)
	res.Notes[idx] = o.Note
	return res, nil
}

func deleteNote(v *api.FlowVersion, o api.DeleteNote) (*api.FlowVersion, error) {
	res := v.Copy()
	if idx := noteIndex(v.Notes, o.ID); idx >= 0 {
		res.Notes = slices.Delete(slices.Clone(v.Notes), idx, idx+1)
	}
	return res, nil
}

func noteIndex(notes []api.Note, id api.NoteID) int {
	return slices.IndexFunc(notes, func(n api.Note) bool {
		return n.ID == id
	})
}
