package mimetype

import "fmt"

// Status is the outcome of [Check].
type Status int

const (
	Invalid Status = iota
	NotInstalled
	AlreadyInstalled
)

func (s Status) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case NotInstalled:
		return "not installed"
	case AlreadyInstalled:
		return "already installed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Lookup reports whether a type is present in a registry.
type Lookup interface {
	IsInstalled(t Type) (bool, error)
}

// Check validates s and, if it is valid, asks lookup whether it is installed.
// An invalid s yields Invalid and an error wrapping [ErrInvalidType].
// A failing lookup yields NotInstalled together with the lookup error.
func Check(s string, lookup Lookup) (Type, Status, error) {
	t, err := Parse(s)
	if err != nil {
		return Type{}, Invalid, err
	}

	installed, err := lookup.IsInstalled(t)
	if err != nil {
		return t, NotInstalled, fmt.Errorf("failed to look up MIME type %s: %w", t, err)
	}

	if installed {
		return t, AlreadyInstalled, nil
	}

	return t, NotInstalled, nil
}
