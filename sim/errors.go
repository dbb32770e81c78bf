package sim

import "errors"

var (
	// ErrInputContract marks inputs of the wrong shape or out of range:
	// probabilities outside [0, 1], T_bolting > T_flowering, too few samples.
	ErrInputContract = errors.New("input contract violated")

	// ErrAllocationInfeasible marks an axis that cannot be placed on any
	// plant because its parent axis was never placed.
	ErrAllocationInfeasible = errors.New("allocation infeasible")
)
