package nav

import "errors"

// Sentinel errors for grid construction, grid edits, and path queries.
// Callers match with errors.Is. "No path exists" is never an error — the
// pathfinders return an empty Path for unreachable goals.
var (
	ErrConfig          = errors.New("nav: invalid grid configuration")
	ErrOutOfBounds     = errors.New("nav: cell index out of bounds")
	ErrInvalidCost     = errors.New("nav: negative traversal cost")
	ErrInvalidArgument = errors.New("nav: invalid pathfinding argument")
)
