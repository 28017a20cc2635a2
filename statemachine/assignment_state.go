package statemachine

import (
	"errors"

	"mostralo-api/models"
)

// AssignmentTransition defines a valid assignment state change and who
// can perform it
type AssignmentTransition struct {
	From  models.AssignmentStatus
	To    models.AssignmentStatus
	Actor string // "driver", "store"
}

var assignmentTransitions = []AssignmentTransition{
	// Only the assigned driver moves the delivery forward
	{From: models.AssignmentAccepted, To: models.AssignmentPickedUp, Actor: "driver"},
	{From: models.AssignmentPickedUp, To: models.AssignmentDelivered, Actor: "driver"},
	// Driver or store admin can cancel before delivery
	{From: models.AssignmentAccepted, To: models.AssignmentCancelled, Actor: "driver"},
	{From: models.AssignmentAccepted, To: models.AssignmentCancelled, Actor: "store"},
	{From: models.AssignmentPickedUp, To: models.AssignmentCancelled, Actor: "driver"},
	{From: models.AssignmentPickedUp, To: models.AssignmentCancelled, Actor: "store"},
}

type assignmentKey struct {
	From  models.AssignmentStatus
	To    models.AssignmentStatus
	Actor string
}

var assignmentMap = func() map[assignmentKey]bool {
	m := make(map[assignmentKey]bool)
	for _, t := range assignmentTransitions {
		m[assignmentKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidAssignmentTransitionsFrom returns all valid next states from a given state
func ValidAssignmentTransitionsFrom(status models.AssignmentStatus) []models.AssignmentStatus {
	var nexts []models.AssignmentStatus
	seen := map[models.AssignmentStatus]bool{}
	for _, t := range assignmentTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransitionAssignment checks if an actor can move an assignment
// from one state to another
func CanTransitionAssignment(from, to models.AssignmentStatus, actor string) error {
	if assignmentMap[assignmentKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'",
	)
}

// GetAllAssignmentTransitions returns the full assignment state machine
func GetAllAssignmentTransitions() []AssignmentTransition {
	return assignmentTransitions
}
