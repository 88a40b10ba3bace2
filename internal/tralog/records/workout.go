package records

import (
	"encoding/json"
	"errors"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/loose"
)

var ErrNotAnObject = errors.New("workout document is not an object")

type MenuType string

const (
	MenuTypeWeight     MenuType = "weight"
	MenuTypeBodyweight MenuType = "bodyweight"
	MenuTypeTime       MenuType = "time"
	MenuTypeDistance   MenuType = "distance"
)

var MenuTypes = []MenuType{MenuTypeWeight, MenuTypeBodyweight, MenuTypeTime, MenuTypeDistance}

func (t MenuType) IsValid() bool {
	switch t {
	case MenuTypeWeight, MenuTypeBodyweight, MenuTypeTime, MenuTypeDistance:
		return true
	default:
		return false
	}
}

// Workout is one recorded training session, as stored. Older documents use
// several date encodings and loosely typed numbers, hence the loose fields.
type Workout struct {
	ID                      string          `json:"id"`
	Date                    loose.Timestamp `json:"date"`
	Exercises               []Exercise      `json:"exercises"`
	TotalVolume             loose.Number    `json:"totalVolume"`
	WarmupDurationSeconds   loose.Number    `json:"warmupDurationSeconds"`
	CooldownDurationSeconds loose.Number    `json:"cooldownDurationSeconds"`
	Memo                    string          `json:"memo,omitempty"`
	CreatedAt               loose.Timestamp `json:"createdAt"`
	UpdatedAt               loose.Timestamp `json:"updatedAt"`
}

type Exercise struct {
	Name   string `json:"name"`
	MenuID string `json:"menuId,omitempty"`
	// MenuType is the type declared by the menu the exercise was recorded from.
	MenuType MenuType `json:"menuType,omitempty"`
	// LegacyType is the type tag written by older clients.
	LegacyType string `json:"type,omitempty"`
	Sets       []Set  `json:"sets"`
}

type Set struct {
	Weight   loose.Number `json:"weight"`
	Reps     loose.Number `json:"reps"`
	Duration loose.Number `json:"duration"`
	// Time is an older name for Duration.
	Time     loose.Number `json:"time"`
	Distance loose.Number `json:"distance"`
	Memo     string       `json:"memo,omitempty"`
}

// Seconds returns the set's duration, falling back to the legacy time field.
func (s Set) Seconds() float64 {
	if s.Duration.Positive() {
		return s.Duration.Float()
	}
	if s.Time.Positive() {
		return s.Time.Float()
	}
	return 0
}

// UnmarshalJSON decodes a stored workout field by field. A malformed field
// gets its zero value; only a document that is not an object fails.
func (w *Workout) UnmarshalJSON(data []byte) error {
	if !loose.IsObject(data) {
		return ErrNotAnObject
	}

	var doc struct {
		ID                      loose.String    `json:"id"`
		Date                    loose.Timestamp `json:"date"`
		Exercises               json.RawMessage `json:"exercises"`
		TotalVolume             loose.Number    `json:"totalVolume"`
		WarmupDurationSeconds   loose.Number    `json:"warmupDurationSeconds"`
		CooldownDurationSeconds loose.Number    `json:"cooldownDurationSeconds"`
		Memo                    loose.String    `json:"memo"`
		CreatedAt               loose.Timestamp `json:"createdAt"`
		UpdatedAt               loose.Timestamp `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*w = Workout{
		ID:                      string(doc.ID),
		Date:                    doc.Date,
		TotalVolume:             doc.TotalVolume,
		WarmupDurationSeconds:   doc.WarmupDurationSeconds,
		CooldownDurationSeconds: doc.CooldownDurationSeconds,
		Memo:                    string(doc.Memo),
		CreatedAt:               doc.CreatedAt,
		UpdatedAt:               doc.UpdatedAt,
	}
	if elems := loose.Elements(doc.Exercises); elems != nil {
		w.Exercises = make([]Exercise, len(elems))
		for i, raw := range elems {
			if err := w.Exercises[i].UnmarshalJSON(raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnmarshalJSON never fails on field types. A declared menu type that is not
// a string is dropped, so the type gets inferred from the sets.
func (e *Exercise) UnmarshalJSON(data []byte) error {
	*e = Exercise{}
	if !loose.IsObject(data) {
		return nil
	}

	var doc struct {
		Name       loose.String    `json:"name"`
		MenuID     loose.String    `json:"menuId"`
		MenuType   json.RawMessage `json:"menuType"`
		LegacyType loose.String    `json:"type"`
		Sets       json.RawMessage `json:"sets"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	e.Name = string(doc.Name)
	e.MenuID = string(doc.MenuID)
	e.MenuType = MenuType(loose.StrictText(doc.MenuType))
	e.LegacyType = string(doc.LegacyType)
	if elems := loose.Elements(doc.Sets); elems != nil {
		e.Sets = make([]Set, len(elems))
		for i, raw := range elems {
			if err := e.Sets[i].UnmarshalJSON(raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) UnmarshalJSON(data []byte) error {
	*s = Set{}
	if !loose.IsObject(data) {
		return nil
	}

	var doc struct {
		Weight   loose.Number `json:"weight"`
		Reps     loose.Number `json:"reps"`
		Duration loose.Number `json:"duration"`
		Time     loose.Number `json:"time"`
		Distance loose.Number `json:"distance"`
		Memo     loose.String `json:"memo"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*s = Set{
		Weight:   doc.Weight,
		Reps:     doc.Reps,
		Duration: doc.Duration,
		Time:     doc.Time,
		Distance: doc.Distance,
		Memo:     string(doc.Memo),
	}
	return nil
}
