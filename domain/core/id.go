package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID             ID
	FileID            ID
	SignalID          ID
	ExclusionWindowID ID
	ArtifactID        ID
)

// String conversions for domain IDs
func (id RunID) String() string             { return ID(id).String() }
func (id FileID) String() string            { return ID(id).String() }
func (id SignalID) String() string          { return ID(id).String() }
func (id ExclusionWindowID) String() string { return ID(id).String() }
func (id ArtifactID) String() string        { return ID(id).String() }

// NewRunID creates a new run identifier
func NewRunID() RunID { return RunID(NewID()) }

// NewFileID creates a new source-file identifier
func NewFileID() FileID { return FileID(NewID()) }

// NewSignalID creates a new signal identifier
func NewSignalID() SignalID { return SignalID(NewID()) }

// NewArtifactID creates a new artifact identifier
func NewArtifactID() ArtifactID { return ArtifactID(NewID()) }

// NewExclusionWindowID derives a stable identifier for an exclusion-window
// candidate from its affected channels and time bounds, so the same
// overlapping-gap candidate gets the same id across repeated runs.
func NewExclusionWindowID(channelsSorted []string, startUnix, endUnix int64) ExclusionWindowID {
	sum := NewHash([]byte(fmt.Sprintf("%s|%d|%d", strings.Join(channelsSorted, ","), startUnix, endUnix)))
	return ExclusionWindowID("ew_" + sum.String()[:16])
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseExclusionWindowID parses a string into ExclusionWindowID
func ParseExclusionWindowID(s string) (ExclusionWindowID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("exclusion window ID cannot be empty")
	}
	return ExclusionWindowID(s), nil
}

// Artifact represents any persisted output of a pipeline run
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts written by the pipeline
type ArtifactKind string

const (
	ArtifactClassification ArtifactKind = "classification"
	ArtifactVerified       ArtifactKind = "verified"
	ArtifactGapReport      ArtifactKind = "gap_report"
	ArtifactSynchronized   ArtifactKind = "synchronized"
	ArtifactDerived        ArtifactKind = "derived"
	ArtifactHalt           ArtifactKind = "halt"
)
