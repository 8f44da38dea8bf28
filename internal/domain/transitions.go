package domain

import "sort"

// roleTargets lists the statuses each role may move an order to.
// Admin ordering is intentionally not enforced: any target except the current one.
var roleTargets = map[Role][]Status{
	RoleAdmin:    {StatusPrepared, StatusOnTheWay, StatusDelivered},
	RoleDelivery: {StatusDelivered},
	RoleCustomer: {},
}

// AvailableTransitions returns the statuses role may apply to an order in current,
// ordered by status id. It is empty for a terminal order.
func AvailableTransitions(current Status, role Role) []Status {
	if current.Terminal() {
		return []Status{}
	}

	targets := roleTargets[role]
	result := make([]Status, 0, len(targets))
	for _, s := range targets {
		if s != current {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// CanTransition reports whether role may move an order from current to target.
func CanTransition(current, target Status, role Role) bool {
	for _, s := range AvailableTransitions(current, role) {
		if s == target {
			return true
		}
	}
	return false
}

// CheckTransition returns the reason a transition is refused, or nil.
// A terminal order is refused before the role is looked at.
func CheckTransition(current, target Status, role Role) error {
	if current.Terminal() {
		return ErrAlreadyTerminal
	}
	if !CanTransition(current, target, role) {
		return ErrUnauthorized
	}
	return nil
}
