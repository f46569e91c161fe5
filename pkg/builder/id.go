package builder

import (
	"strings"

	"github.com/google/uuid"

	"github.com/kode4food/argyll/editor/pkg/api"
)

// NewFlowID generates a unique flow ID with a readable prefix
func NewFlowID(prefix string) api.FlowID {
	prefix = strings.ToLower(prefix)
	prefix = strings.ReplaceAll(prefix, " ", "-")
	return api.FlowID(prefix + "-" + shortID())
}

// NewVersionID generates a unique flow version ID
func NewVersionID() api.VersionID {
	return api.VersionID(uuid.New().String())
}

// NewRunID generates a unique run ID
func NewRunID() api.RunID {
	return api.RunID(uuid.New().String())
}

// NewNoteID generates a unique note ID
func NewNoteID() api.NoteID {
	return api.NoteID(uuid.New().String())
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
}
