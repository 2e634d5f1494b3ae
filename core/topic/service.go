package topic

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

var (
	ErrNotFound         = errors.New("topic not found")
	ErrNameExists       = errors.New("a topic with this name already exists")
	ErrPermissionDenied = errors.New("no permission to modify this topic")
	ErrNotEditable      = errors.New("only private topics can be modified")
)

type Service struct {
	st       *store.Store
	notifier core.Notifier
}

func NewService(st *store.Store, notifier core.Notifier) *Service {
	return &Service{st: st, notifier: notifier}
}

func (svc *Service) Create(teacherID string, nt NewTopic) (Topic, error) {
	if _, exists := store.Find(svc.st, Collection, func(t Topic) bool { return t.Name == nt.Name }); exists {
		return Topic{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}

	now := core.NowFunc().UTC()
	tpc := Topic{
		ID:            core.NewID(),
		Slug:          core.Slugify(nt.Name, "topic"),
		Name:          nt.Name,
		Description:   nt.Description,
		Category:      nt.Category,
		Objectives:    make([]Objective, 0, len(nt.Objectives)),
		CreatorID:     teacherID,
		OwnerIDs:      []string{teacherID},
		PublishStatus: core.PublishPrivate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, desc := range nt.Objectives {
		tpc.Objectives = append(tpc.Objectives, Objective{
			ID:          core.NewID(),
			Description: desc,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := store.Add(svc.st, Collection, tpc); err != nil {
		return Topic{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Topic %s created.", tpc.Name))
	return tpc, nil
}

func (svc *Service) Update(teacherID, id string, up UpdateTopic) (Topic, error) {
	orig, ok := store.Get[Topic](svc.st, Collection, id)
	if !ok {
		return Topic{}, ErrNotFound
	}
	if !core.CanEdit(orig, teacherID) {
		return Topic{}, ErrPermissionDenied
	}
	if !orig.PublishStatus.Editable() {
		return Topic{}, ErrNotEditable
	}
	if err := up.Validate(orig); err != nil {
		return Topic{}, err
	}

	var updated Topic
	err := store.Update(svc.st, Collection, id, func(t Topic) Topic {
		t.Name = up.Name
		t.Description = up.Description
		t.Category = up.Category
		t.UpdatedAt = core.NowFunc().UTC()
		updated = t
		return t
	})
	if err != nil {
		return Topic{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Topic %s updated.", updated.Name))
	return updated, nil
}

func (svc *Service) Delete(teacherID, id string) error {
	tpc, ok := store.Get[Topic](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	if !core.CanDelete(tpc, teacherID) {
		return ErrPermissionDenied
	}
	if !tpc.PublishStatus.Editable() {
		return ErrNotEditable
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Topic %s deleted.", tpc.Name))
	return nil
}

// AddObjective appends a learning goal to the topic's objective list.
func (svc *Service) AddObjective(teacherID, id, description string) (Topic, error) {
	tpc, ok := store.Get[Topic](svc.st, Collection, id)
	if !ok {
		return Topic{}, ErrNotFound
	}
	if !core.CanEdit(tpc, teacherID) {
		return Topic{}, ErrPermissionDenied
	}

	var updated Topic
	err := store.Update(svc.st, Collection, id, func(t Topic) Topic {
		now := core.NowFunc().UTC()
		t.Objectives = append(t.Objectives, Objective{
			ID:          core.NewID(),
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		t.UpdatedAt = now
		updated = t
		return t
	})
	return updated, err
}

// RemoveObjective drops a learning goal; a missing objective id is a no-op.
func (svc *Service) RemoveObjective(teacherID, id, objectiveID string) (Topic, error) {
	tpc, ok := store.Get[Topic](svc.st, Collection, id)
	if !ok {
		return Topic{}, ErrNotFound
	}
	if !core.CanEdit(tpc, teacherID) {
		return Topic{}, ErrPermissionDenied
	}

	var updated Topic
	err := store.Update(svc.st, Collection, id, func(t Topic) Topic {
		kept := t.Objectives[:0]
		for _, obj := range t.Objectives {
			if obj.ID != objectiveID {
				kept = append(kept, obj)
			}
		}
		t.Objectives = kept
		t.UpdatedAt = core.NowFunc().UTC()
		updated = t
		return t
	})
	return updated, err
}

func (svc *Service) GetByID(id string) (Topic, error) {
	if tpc, ok := store.Get[Topic](svc.st, Collection, id); ok {
		return tpc, nil
	}
	return Topic{}, ErrNotFound
}

func (svc *Service) GetBySlug(slug string) (Topic, error) {
	if tpc, ok := store.Find(svc.st, Collection, func(t Topic) bool { return t.Slug == slug }); ok {
		return tpc, nil
	}
	return Topic{}, ErrNotFound
}

func (svc *Service) QueryAll() []Topic {
	return store.All[Topic](svc.st, Collection)
}

func (svc *Service) ByTeacher(teacherID string) []Topic {
	return store.Filter(svc.st, Collection, func(t Topic) bool {
		return t.CreatorID == teacherID || core.ContainsString(t.OwnerIDs, teacherID)
	})
}

// Categories returns the distinct non-empty categories in first-seen order.
func (svc *Service) Categories() []string {
	return core.DistinctCategories(store.All[Topic](svc.st, Collection), func(t Topic) string { return t.Category })
}
