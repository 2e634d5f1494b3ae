package module

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
)

// Store collections owned by this package.
const (
	Collection           = "modules"
	LessonLinkCollection = "moduleLessons"
	TopicLinkCollection  = "moduleTopics"
)

type (
	// Module is a block of instructional content with a target total
	// duration. MinutesToAllocate tracks the remainder of TotalMinutes not
	// yet covered by linked lessons and is recomputed on every link change
	// and lesson edit.
	Module struct {
		ID                      string             `json:"id"`
		Slug                    string             `json:"slug"`
		Name                    string             `json:"name"`
		Description             string             `json:"description,omitempty"`
		Category                string             `json:"category"`
		TotalMinutes            int                `json:"totalMinutes"`
		AverageMinutesPerLesson int                `json:"averageMinutesPerLesson"`
		MinutesToAllocate       int                `json:"minutesToAllocate"`
		CreatorID               string             `json:"creatorId"`
		OwnerIDs                []string           `json:"ownerId"`
		PublishStatus           core.PublishStatus `json:"publishStatus"`
		CreatedAt               time.Time          `json:"createdAt"`
		UpdatedAt               time.Time          `json:"updatedAt"`
	}

	// ModuleLesson links a Lesson into a Module and carries the per-module
	// lectured flag.
	ModuleLesson struct {
		ID        string    `json:"id"`
		ModuleID  string    `json:"moduleId"`
		LessonID  string    `json:"lessonId"`
		Lectured  bool      `json:"lectured"`
		TeacherID string    `json:"teacherId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// ModuleTopic links a Topic into a Module.
	ModuleTopic struct {
		ID        string    `json:"id"`
		ModuleID  string    `json:"moduleId"`
		TopicID   string    `json:"topicId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

func (m Module) RecordID() string       { return m.ID }
func (ml ModuleLesson) RecordID() string { return ml.ID }
func (mt ModuleTopic) RecordID() string  { return mt.ID }

func (m Module) Creator() string  { return m.CreatorID }
func (m Module) Owners() []string { return m.OwnerIDs }

// NewModule contains information needed to create a Module.
type NewModule struct {
	Name                    string `json:"name" validate:"required"`
	Description             string `json:"description"`
	Category                string `json:"category" validate:"required"`
	TotalMinutes            int    `json:"totalMinutes" validate:"required,gt=0"`
	AverageMinutesPerLesson int    `json:"averageMinutesPerLesson" validate:"required,gt=0"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Category = core.CleanString(nm.Category)
	return validate.Struct(nm)
}

// UpdateModule defines what may be modified on an existing Module. Nil/empty
// fields keep their previous values.
type UpdateModule struct {
	Name                    string `json:"name"`
	Description             string `json:"description"`
	Category                string `json:"category"`
	TotalMinutes            *int   `json:"totalMinutes" validate:"omitempty,gt=0"`
	AverageMinutesPerLesson *int   `json:"averageMinutesPerLesson" validate:"omitempty,gt=0"`
}

func (um *UpdateModule) Validate(validate *validator.Validate, orig Module) error {
	if name := core.CleanString(um.Name); name != "" {
		um.Name = name
	} else {
		um.Name = orig.Name
	}
	if cat := core.CleanString(um.Category); cat != "" {
		um.Category = cat
	} else {
		um.Category = orig.Category
	}
	if um.Description == "" {
		um.Description = orig.Description
	}
	return validate.Struct(um)
}
