// Package encoder maps categorical team labels to the integer codes the
// predictors were trained with.
package encoder

import (
	"errors"
	"sort"
)

// FallbackCode is returned for labels that were not seen at training time.
// It is the code of the reference (first) class.
const FallbackCode = 0

// ErrNoClasses is returned when an encoder is built without any label.
var ErrNoClasses = errors.New("encoder has no classes")

// Encoder is an immutable label -> code mapping. Classes are sorted and
// each label's code is its index, matching a label encoder fitted on them.
type Encoder struct {
	classes []string
	codes   map[string]int
}

// New builds an encoder from the labels observed at training time.
// Duplicates are dropped.
func New(classes []string) (*Encoder, error) {
	seen := make(map[string]struct{}, len(classes))
	sorted := make([]string, 0, len(classes))
	for _, c := range classes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		sorted = append(sorted, c)
	}
	if len(sorted) == 0 {
		return nil, ErrNoClasses
	}
	sort.Strings(sorted)

	codes := make(map[string]int, len(sorted))
	for i, c := range sorted {
		codes[c] = i
	}
	return &Encoder{classes: sorted, codes: codes}, nil
}

// Encode returns the trained code for label, or FallbackCode when the
// label is unknown.
func (e *Encoder) Encode(label string) int {
	if code, ok := e.codes[label]; ok {
		return code
	}
	return FallbackCode
}

// Known reports whether label was seen at training time.
func (e *Encoder) Known(label string) bool {
	_, ok := e.codes[label]
	return ok
}

// Classes returns a copy of the known labels in code order.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the number of known labels.
func (e *Encoder) Len() int { return len(e.classes) }
