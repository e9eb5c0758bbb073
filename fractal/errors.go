package fractal

import "github.com/zeebo/errs"

// Error is the class of errors returned by this package. Arithmetic
// failures from num keep their own class and are wrapped by it.
var Error = errs.Class("fractal")
