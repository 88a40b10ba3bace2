package events

import (
	"time"
)

type Type string

const (
	TypeWorkoutCreated  Type = "workout.created"
	TypeWorkoutUpdated  Type = "workout.updated"
	TypeWorkoutDeleted  Type = "workout.deleted"
	TypeWorkoutImported Type = "workout.imported"
)

// WorkoutEvent announces a change to a user's workouts. Consumers refetch the
// records; the event carries no workout data.
type WorkoutEvent struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"userId"`
	WorkoutIDs []string  `json:"workoutIds"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewWorkoutEvent(t Type, userID string, occurredAt time.Time, workoutIDs ...string) WorkoutEvent {
	return WorkoutEvent{
		Type:       t,
		UserID:     userID,
		WorkoutIDs: workoutIDs,
		OccurredAt: occurredAt.UTC(),
	}
}
