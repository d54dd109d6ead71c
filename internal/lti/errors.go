package lti

import (
	"fmt"

	"github.com/san-kum/lsim/internal/linalg"
)

var (
	// ErrImproper is returned when a numerator has a higher degree than its
	// denominator.
	ErrImproper = fmt.Errorf("%w: improper transfer function", linalg.ErrInvalidArgument)

	// ErrUnsupported is returned by realizers that cannot apply a method to
	// the given system.
	ErrUnsupported = fmt.Errorf("%w: unsupported realization", linalg.ErrInvalidArgument)
)
