// Package ids implements the label-vector, word, sequence, and
// combined-state-id primitives of spec §4.1 and §3.
package ids

import "strings"

// Epsilon is the distinguished label denoting an unobservable placeholder
// inside a label vector (spec §4.1).
const Epsilon = "*"

// LabelVector is the parsed form of "<l0,l1,...,lk-1>". A LabelVector
// constructed from a plain (non-vector) string has Size() == -1.
type LabelVector struct {
	raw    string
	labels []string // nil iff not a vector
}

// ParseLabelVector parses s. If s is not of the form "<...>" the result
// is a non-vector LabelVector whose String() returns s unchanged.
func ParseLabelVector(s string) LabelVector {
	if len(s) < 2 || s[0] != '<' || s[len(s)-1] != '>' {
		return LabelVector{raw: s}
	}
	inner := s[1 : len(s)-1]
	var parts []string
	if inner == "" {
		parts = []string{}
	} else {
		parts = strings.Split(inner, ",")
	}
	return LabelVector{raw: s, labels: parts}
}

// NewLabelVector builds a LabelVector directly from its component labels.
func NewLabelVector(labels ...string) LabelVector {
	cp := make([]string, len(labels))
	copy(cp, labels)
	return LabelVector{raw: vectorString(cp), labels: cp}
}

func vectorString(labels []string) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(strings.Join(labels, ","))
	b.WriteByte('>')
	return b.String()
}

// Size returns the number of components, or -1 if this is not a vector.
func (v LabelVector) Size() int {
	if v.labels == nil {
		return -1
	}
	return len(v.labels)
}

// LabelAt returns the label at index i. Panics if i is out of range or v
// is not a vector - callers must check Size() first.
func (v LabelVector) LabelAt(i int) string {
	return v.labels[i]
}

// IsUnobservableToController reports whether index 0 (the system
// component) or index i (the controller's own component) is epsilon -
// per spec §4.1, either condition makes the vector unobservable to
// controller i.
func (v LabelVector) IsUnobservableToController(i int) bool {
	if v.Size() <= 0 {
		return false
	}
	return v.LabelAt(0) == Epsilon || v.LabelAt(i) == Epsilon
}

// IsStrictSubVector reports whether v1 and v2 have the same size and,
// at every index, either the labels are equal or v1 has epsilon (spec
// §4.1 - used by LUB/protocol-feasibility reasoning in C7).
func IsStrictSubVector(v1, v2 LabelVector) bool {
	if v1.Size() != v2.Size() || v1.Size() < 0 {
		return false
	}
	for i := 0; i < v1.Size(); i++ {
		if v1.LabelAt(i) != v2.LabelAt(i) && v1.LabelAt(i) != Epsilon {
			return false
		}
	}
	return true
}

// String returns the canonical label string used for equality.
func (v LabelVector) String() string {
	if v.labels == nil {
		return v.raw
	}
	return vectorString(v.labels)
}

// Equal compares two label vectors (or plain labels) by canonical string.
func (v LabelVector) Equal(other LabelVector) bool {
	return v.String() == other.String()
}
