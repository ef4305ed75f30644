package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", ErrInvalidArgument)
)

// Kind classifies a failure returned by the task service.
type Kind int

const (
	// KindInfrastructure covers everything the service does not classify
	// itself: storage outages, I/O faults, cancelled contexts.
	KindInfrastructure Kind = iota
	KindNotFound
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "infrastructure"
	}
}

// KindOf reports the kind of err. A nil error has no meaningful kind and is
// reported as KindInfrastructure.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	default:
		return KindInfrastructure
	}
}
