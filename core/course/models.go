package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
)

// Store collections owned by this package.
const (
	Collection           = "courses"
	ModuleLinkCollection = "courseModules"
)

type (
	// Course is a top-level offering composed of modules.
	Course struct {
		ID            string             `json:"id"`
		Slug          string             `json:"slug"`
		Name          string             `json:"name"`
		Description   string             `json:"description,omitempty"`
		Category      string             `json:"category"`
		Status        core.RecordStatus  `json:"status"`
		PublishStatus core.PublishStatus `json:"publishStatus"`
		CreatorID     string             `json:"creatorId"`
		OwnerIDs      []string           `json:"ownerId"`
		CreatedAt     time.Time          `json:"createdAt"`
		UpdatedAt     time.Time          `json:"updatedAt"`
	}

	// CourseModule links a Module into a Course.
	CourseModule struct {
		ID        string    `json:"id"`
		CourseID  string    `json:"courseId"`
		ModuleID  string    `json:"moduleId"`
		TeacherID string    `json:"teacherId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

func (c Course) RecordID() string        { return c.ID }
func (cm CourseModule) RecordID() string { return cm.ID }

func (c Course) Creator() string  { return c.CreatorID }
func (c Course) Owners() []string { return c.OwnerIDs }

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Category = core.CleanString(nc.Category)
	return validate.Struct(nc)
}

// UpdateCourse defines what may be modified on an existing Course. Nil/empty
// fields keep their previous values.
type UpdateCourse struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Status      *core.RecordStatus `json:"status"`
}

func (uc *UpdateCourse) Validate(orig Course) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if cat := core.CleanString(uc.Category); cat != "" {
		uc.Category = cat
	} else {
		uc.Category = orig.Category
	}
	if uc.Description == "" {
		uc.Description = orig.Description
	}
	return nil
}
