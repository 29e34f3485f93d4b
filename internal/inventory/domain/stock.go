package domain

// ReservationResult is the outcome of an atomic check-and-decrement.
// Available is only meaningful when OK is false and carries the stock level
// observed when the reservation was rejected.
type ReservationResult struct {
	OK        bool
	Available int
}
