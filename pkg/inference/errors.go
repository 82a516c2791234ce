package inference

import "errors"

// ErrNoModelDetected is returned when no usable car-model text could be
// inferred from either card image. Callers must surface it distinctly: the
// user has to supply a title manually.
var ErrNoModelDetected = errors.New("no car model detected")
