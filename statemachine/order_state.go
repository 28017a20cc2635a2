package statemachine

import (
	"errors"

	"mostralo-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string // "store", "driver", "customer", "system"
}

// validTransitions is the authoritative order state machine definition
var validTransitions = []Transition{
	// Store accepts the order and starts preparing
	{From: models.StatusReceived, To: models.StatusPreparing, Actor: "store"},
	// Store or Customer can cancel before preparation finishes
	{From: models.StatusReceived, To: models.StatusCancelled, Actor: "store"},
	{From: models.StatusReceived, To: models.StatusCancelled, Actor: "customer"},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: "store"},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: "customer"},
	// Store finishes preparation
	{From: models.StatusPreparing, To: models.StatusReady, Actor: "store"},
	// Store hands the bag over (pickup orders jump straight to completed)
	{From: models.StatusReady, To: models.StatusDispatched, Actor: "store"},
	{From: models.StatusReady, To: models.StatusCompleted, Actor: "store"},
	// Courier movement is driven by the assignment lifecycle
	{From: models.StatusPreparing, To: models.StatusInTransit, Actor: "system"},
	{From: models.StatusReady, To: models.StatusInTransit, Actor: "system"},
	{From: models.StatusDispatched, To: models.StatusInTransit, Actor: "system"},
	{From: models.StatusInTransit, To: models.StatusCompleted, Actor: "system"},
	// Cancelled assignment returns the order to the pool
	{From: models.StatusInTransit, To: models.StatusPreparing, Actor: "system"},
	{From: models.StatusDispatched, To: models.StatusPreparing, Actor: "system"},
	{From: models.StatusReady, To: models.StatusPreparing, Actor: "system"},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

// Build a lookup map for O(1) validation
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

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if transitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
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

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
