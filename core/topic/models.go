package topic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
)

// Collection is the store collection holding topics.
const Collection = "topics"

type (
	// Objective is one learning goal within a Topic, kept in authoring order.
	Objective struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	Topic struct {
		ID            string             `json:"id"`
		Slug          string             `json:"slug"`
		Name          string             `json:"name"`
		Description   string             `json:"description,omitempty"`
		Category      string             `json:"category"`
		Objectives    []Objective        `json:"objectives"`
		CreatorID     string             `json:"creatorId"`
		OwnerIDs      []string           `json:"ownerId"`
		PublishStatus core.PublishStatus `json:"publishStatus"`
		CreatedAt     time.Time          `json:"createdAt"`
		UpdatedAt     time.Time          `json:"updatedAt"`
	}
)

func (t Topic) RecordID() string { return t.ID }

func (t Topic) Creator() string  { return t.CreatorID }
func (t Topic) Owners() []string { return t.OwnerIDs }

// NewTopic contains information needed to create a Topic.
type NewTopic struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required"`
	Objectives  []string `json:"objectives"`
}

func (nt *NewTopic) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Category = core.CleanString(nt.Category)
	return validate.Struct(nt)
}

// UpdateTopic defines what may be modified on an existing Topic. Empty
// fields keep their previous values.
type UpdateTopic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (up *UpdateTopic) Validate(orig Topic) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if cat := core.CleanString(up.Category); cat != "" {
		up.Category = cat
	} else {
		up.Category = orig.Category
	}
	if up.Description == "" {
		up.Description = orig.Description
	}
	return nil
}
