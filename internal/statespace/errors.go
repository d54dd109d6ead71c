package statespace

import "errors"

// ErrBackendUnavailable is returned when discretization or realization is
// requested without a backend to perform it.
var ErrBackendUnavailable = errors.New("statespace: realization backend unavailable")
