package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	// StageListHash fingerprints an ordered stage plan for audit/comparison.
	StageListHash Hash
	// InputFingerprint fingerprints the set of input files a run consumed,
	// so two runs over identical inputs can be recognised as reproducible.
	InputFingerprint Hash
)

// Constructors
func NewStageListHash(data []byte) StageListHash         { return StageListHash(NewHash(data)) }
func NewInputFingerprint(data []byte) InputFingerprint   { return InputFingerprint(NewHash(data)) }

// String conversions
func (h StageListHash) String() string      { return Hash(h).String() }
func (h InputFingerprint) String() string   { return Hash(h).String() }

// ComputeStageListHash hashes an ordered list of stage names/specs deterministically.
func ComputeStageListHash(stages []interface{}) StageListHash {
	var data strings.Builder
	for _, stage := range stages {
		data.WriteString(fmt.Sprintf("%v", stage))
	}
	return NewStageListHash([]byte(data.String()))
}

// ComputeInputFingerprint hashes the sorted set of (filename, size) pairs that
// fed a run, so a re-run over byte-identical inputs produces the same fingerprint.
func ComputeInputFingerprint(filenames []string, sizes map[string]int64) InputFingerprint {
	sorted := append([]string(nil), filenames...)
	sort.Strings(sorted)

	var data strings.Builder
	for _, name := range sorted {
		data.WriteString(name)
		data.WriteString(fmt.Sprintf(":%d;", sizes[name]))
	}
	return NewInputFingerprint([]byte(data.String()))
}
