package table

import "fmt"

// Group partitions the pattern table by the context an entry applies in.
// Groups are declared in the order their entries must appear in a Table.
type Group uint8

const (
	// Prefix markers, evaluated on every byte
	PrefixType     Group = iota // hmm_
	PrefixFunction              // HMM_

	// Entries gated on a prefix context
	TypeName     // vec2, mat4, quaternion after hmm_
	FunctionType // Vec2, Mat4, Quaternion after HMM_
	FunctionVerb // Subtract, Multiply, Length after HMM_
	Handedness   // Perspective, LookAt after HMM_, only before '('

	numGroups
)

var groupNames = map[Group]string{
	PrefixType:     "prefix-type",
	PrefixFunction: "prefix-function",
	TypeName:       "type-name",
	FunctionType:   "function-type",
	FunctionVerb:   "function-verb",
	Handedness:     "handedness",
}

// ParseGroup returns the group with the given name.
func ParseGroup(name string) (Group, error) {
	for g, n := range groupNames {
		if n == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownGroup, name)
}

func (g Group) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText encodes the group by name in table files.
func (g Group) MarshalText() ([]byte, error) {
	name, ok := groupNames[g]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownGroup, g)
	}
	return []byte(name), nil
}

// UnmarshalText decodes a group name from a table file.
func (g *Group) UnmarshalText(text []byte) error {
	parsed, err := ParseGroup(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
