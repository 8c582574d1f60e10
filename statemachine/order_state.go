package statemachine

import (
	"food-marketplace-api/apperr"
	"food-marketplace-api/models"
)

// Actors that can drive an order through its lifecycle
const (
	ActorUser       = "user"
	ActorRestaurant = "restaurant"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Restaurant accepts or refuses a new order
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: ActorRestaurant},
	{From: models.StatusPending, To: models.StatusRejected, Actor: ActorRestaurant},
	// Either side can cancel before preparation starts
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorUser},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorUser},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorRestaurant},
	// Restaurant advances the happy path
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: ActorRestaurant},
	{From: models.StatusReady, To: models.StatusOnDelivery, Actor: ActorRestaurant},
	{From: models.StatusOnDelivery, To: models.StatusDelivered, Actor: ActorRestaurant},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the given state
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return apperr.New(apperr.State,
		"invalid transition: "+string(from)+" -> "+string(to)+
			" is not allowed for actor '"+actor+"'. "+
			"Valid transitions from "+string(from)+" are: "+describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// MilestoneColumn names the order column that records when a state was
// entered. Empty for pending, which is recorded by created_at.
func MilestoneColumn(status models.OrderStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "confirmed_at"
	case models.StatusPreparing:
		return "preparing_at"
	case models.StatusReady:
		return "ready_at"
	case models.StatusOnDelivery:
		return "on_delivery_at"
	case models.StatusDelivered:
		return "delivered_at"
	case models.StatusCancelled, models.StatusRejected:
		return "cancelled_at"
	}
	return ""
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
