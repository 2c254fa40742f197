package models

type OrderStatus string

const (
	StatusPlaced    OrderStatus = "PLACED"
	StatusProcuring OrderStatus = "PROCURING"
	StatusOnTheWay  OrderStatus = "ON_THE_WAY"
	StatusDelivered OrderStatus = "DELIVERED" // terminal: order is frozen
)

// validNext encodes the forward-only lifecycle; DELIVERED has no exits.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPlaced:    {StatusProcuring: true},
	StatusProcuring: {StatusOnTheWay: true},
	StatusOnTheWay:  {StatusDelivered: true},
	StatusDelivered: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether from -> to is a legal status move.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// OpenStatuses are the non-terminal states whose orders still track
// market prices.
var OpenStatuses = []OrderStatus{StatusPlaced, StatusProcuring, StatusOnTheWay}
