package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
)

// Store collections owned by this package.
const (
	Collection            = "classes"
	TeamCollection        = "teams"
	StudentLinkCollection = "classStudents"
	TeamLinkCollection    = "moduleTeams"
)

type (
	// Class is a cohort of students taught by one teacher. Color is the hex
	// accent the dashboard renders the class with.
	Class struct {
		ID          string    `json:"id"`
		Slug        string    `json:"slug"`
		Name        string    `json:"name"`
		Description string    `json:"description,omitempty"`
		Color       string    `json:"color,omitempty"`
		CourseID    string    `json:"courseId,omitempty"`
		TeacherID   string    `json:"teacherId"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Team is a named subgroup of a class.
	Team struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		ClassID   string    `json:"classId"`
		TeacherID string    `json:"teacherId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// ClassStudent links a student user into a class roster.
	ClassStudent struct {
		ID        string    `json:"id"`
		ClassID   string    `json:"classId"`
		StudentID string    `json:"studentId"`
		TeamID    string    `json:"teamId,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// ModuleTeam assigns a module to a team.
	ModuleTeam struct {
		ID        string    `json:"id"`
		ModuleID  string    `json:"moduleId"`
		TeamID    string    `json:"teamId"`
		TeacherID string    `json:"teacherId"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

func (c Class) RecordID() string         { return c.ID }
func (t Team) RecordID() string          { return t.ID }
func (cs ClassStudent) RecordID() string { return cs.ID }
func (mt ModuleTeam) RecordID() string   { return mt.ID }

// NewClass contains information needed to create a Class.
type NewClass struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	CourseID    string `json:"courseId"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// UpdateClass defines what may be modified on an existing Class.
type UpdateClass struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
	CourseID    *string `json:"courseId"`
}

func (uc *UpdateClass) Validate(orig Class) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if uc.Description == "" {
		uc.Description = orig.Description
	}
	return nil
}

// NewTeam contains information needed to create a Team within a class.
type NewTeam struct {
	Name    string `json:"name" validate:"required"`
	ClassID string `json:"classId" validate:"required"`
}

func (nt *NewTeam) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}
