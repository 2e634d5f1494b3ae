package enrollment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
)

// Store collections owned by this package.
const (
	Collection           = "enrollments"
	AssignmentCollection = "moduleAssignments"
)

type (
	// Enrollment is a paid engagement of a teacher for one or more classes,
	// priced through per-module assignments.
	Enrollment struct {
		ID            string    `json:"id"`
		Slug          string    `json:"slug"`
		Name          string    `json:"name"`
		Description   string    `json:"description,omitempty"`
		CourseID      string    `json:"courseId,omitempty"`
		TeacherID     string    `json:"teacherId"`
		ClassIDs      []string  `json:"classIds"`
		AssignmentIDs []string  `json:"assignmentIds"`
		TotalPrice    float64   `json:"totalPrice"`
		StartDate     time.Time `json:"startDate"`
		EndDate       time.Time `json:"endDate"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// ModuleAssignment sets the hourly rate a module is billed at under an
	// enrollment.
	ModuleAssignment struct {
		ID           string    `json:"id"`
		ModuleID     string    `json:"moduleId"`
		EnrollmentID string    `json:"enrollmentId"`
		PricePerHour float64   `json:"pricePerHour"`
		Currency     string    `json:"currency"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}
)

func (e Enrollment) RecordID() string        { return e.ID }
func (ma ModuleAssignment) RecordID() string { return ma.ID }

// NewEnrollment contains information needed to create an Enrollment.
type NewEnrollment struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	CourseID    string    `json:"courseId"`
	ClassIDs    []string  `json:"classIds"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate" validate:"omitempty,gtefield=StartDate"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

// UpdateEnrollment defines what may be modified on an existing Enrollment.
// Renaming regenerates the slug.
type UpdateEnrollment struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ClassIDs    []string   `json:"classIds"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func (ue *UpdateEnrollment) Validate(orig Enrollment) error {
	if name := core.CleanString(ue.Name); name != "" {
		ue.Name = name
	} else {
		ue.Name = orig.Name
	}
	if ue.Description == "" {
		ue.Description = orig.Description
	}
	return nil
}

// NewAssignment contains information needed to price a module under an
// enrollment.
type NewAssignment struct {
	ModuleID     string  `json:"moduleId" validate:"required"`
	EnrollmentID string  `json:"enrollmentId" validate:"required"`
	PricePerHour float64 `json:"pricePerHour" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"required,billingcurrency"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Currency = strings.ToUpper(core.CleanString(na.Currency))
	return validate.Struct(na)
}
