package lesson

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/topic"
)

// Collection is the store collection holding lessons.
const Collection = "lessons"

// Lesson is an atomic teaching unit with a duration and lecture status.
type Lesson struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Duration    int               `json:"duration"` // minutes
	Order       int               `json:"order"`
	Lectured    bool              `json:"lectured"`
	Status      core.RecordStatus `json:"status"`
	TeacherID   string            `json:"teacherId"`
	Topics      []topic.Topic     `json:"topics,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (l Lesson) RecordID() string { return l.ID }

// NewLesson contains information needed to create a Lesson.
type NewLesson struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"required,gt=0"`
	Order       int    `json:"order" validate:"gte=0"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	return validate.Struct(nl)
}

// UpdateLesson defines what may be modified on an existing Lesson. Nil/empty
// fields keep their previous values.
type UpdateLesson struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Duration    *int               `json:"duration" validate:"omitempty,gt=0"`
	Order       *int               `json:"order" validate:"omitempty,gte=0"`
	Status      *core.RecordStatus `json:"status"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate, orig Lesson) error {
	if name := core.CleanString(ul.Name); name != "" {
		ul.Name = name
	} else {
		ul.Name = orig.Name
	}
	if ul.Description == "" {
		ul.Description = orig.Description
	}
	return validate.Struct(ul)
}
