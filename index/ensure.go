package index

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/registry"
)

// Action is what EnsureIndex did.
type Action int

const (
	Failed Action = iota
	Created
	Removed
	SkippedExists
	SkippedMissing
)

func (a Action) String() string {
	switch a {
	case Failed:
		return "failed"
	case Created:
		return "created"
	case Removed:
		return "removed"
	case SkippedExists:
		return "already exists, skipped"
	case SkippedMissing:
		return "not found, skipped"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Outcome reports the result of EnsureIndex for one attribute.
type Outcome struct {
	Name string
	Type registry.ValueType

	// WantPresent is the requested state of the index.
	WantPresent bool

	Action Action

	// Err is set if and only if Action is Failed.
	Err error
}

// Skipped returns true if the index was already in the requested state.
func (o Outcome) Skipped() bool {
	return o.Action == SkippedExists || o.Action == SkippedMissing
}

// EnsureIndex brings the index name into the requested state.
// With wantPresent an absent index is created, otherwise a present index is removed.
// An index that already is in the requested state is skipped, which is not a failure.
// This makes repeated imports of the same attribute schema succeed.
func (s *Store) EnsureIndex(name string, typ registry.ValueType, wantPresent bool) Outcome {
	outcome := Outcome{Name: name, Type: typ, WantPresent: wantPresent}

	var err error
	if wantPresent {
		err = s.Create(name, typ)
		switch {
		case err == nil:
			outcome.Action = Created
		case errors.Is(err, ErrIndexExists):
			outcome.Action = SkippedExists
			if existing, getErr := s.Get(name); getErr == nil && existing.Type != typ {
				s.logger.Warn("index exists with another type", "name", name, "type", existing.Type, "requested", typ)
			}
		}
	} else {
		err = s.Remove(name)
		switch {
		case err == nil:
			outcome.Action = Removed
		case errors.Is(err, ErrIndexNotFound):
			outcome.Action = SkippedMissing
		}
	}

	if outcome.Action == Failed {
		outcome.Err = err
		s.logger.Error("failed to update index", "name", name, "type", typ, "present", wantPresent, "err", err)
	} else {
		s.logger.Debug("index updated", "name", name, "type", typ, "action", outcome.Action)
	}

	return outcome
}
