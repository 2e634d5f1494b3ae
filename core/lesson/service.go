package lesson

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

var (
	ErrNotFound         = errors.New("lesson not found")
	ErrPermissionDenied = errors.New("no permission to modify this lesson")
)

// ChangeListener is told when a lesson's duration changes or the lesson is
// removed, so dependent aggregates can rebalance their minute budgets.
type ChangeListener interface {
	LessonChanged(lessonID string)
}

type Service struct {
	st        *store.Store
	notifier  core.Notifier
	listeners []ChangeListener
}

func NewService(st *store.Store, notifier core.Notifier, listeners ...ChangeListener) *Service {
	return &Service{st: st, notifier: notifier, listeners: listeners}
}

func (svc *Service) Create(teacherID string, nl NewLesson) (Lesson, error) {
	now := core.NowFunc().UTC()
	lsn := Lesson{
		ID:          core.NewID(),
		Slug:        core.Slugify(nl.Name, "lesson"),
		Name:        nl.Name,
		Description: nl.Description,
		Duration:    nl.Duration,
		Order:       nl.Order,
		Status:      core.StatusDraft,
		TeacherID:   teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Add(svc.st, Collection, lsn); err != nil {
		return Lesson{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson %s created.", lsn.Name))
	return lsn, nil
}

func (svc *Service) Update(teacherID, id string, ul UpdateLesson) (Lesson, error) {
	orig, ok := store.Get[Lesson](svc.st, Collection, id)
	if !ok {
		return Lesson{}, ErrNotFound
	}
	if orig.TeacherID != teacherID {
		return Lesson{}, ErrPermissionDenied
	}

	var updated Lesson
	err := store.Update(svc.st, Collection, id, func(l Lesson) Lesson {
		l.Name = ul.Name
		l.Description = ul.Description
		if ul.Duration != nil {
			l.Duration = *ul.Duration
		}
		if ul.Order != nil {
			l.Order = *ul.Order
		}
		if ul.Status != nil {
			l.Status = *ul.Status
		}
		l.UpdatedAt = core.NowFunc().UTC()
		updated = l
		return l
	})
	if err != nil {
		return Lesson{}, err
	}

	if ul.Duration != nil && *ul.Duration != orig.Duration {
		svc.lessonChanged(id)
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson %s updated.", updated.Name))
	return updated, nil
}

func (svc *Service) Delete(teacherID, id string) error {
	lsn, ok := store.Get[Lesson](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	if lsn.TeacherID != teacherID {
		return ErrPermissionDenied
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	svc.lessonChanged(id)
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson %s deleted.", lsn.Name))
	return nil
}

func (svc *Service) GetByID(id string) (Lesson, error) {
	if lsn, ok := store.Get[Lesson](svc.st, Collection, id); ok {
		return lsn, nil
	}
	return Lesson{}, ErrNotFound
}

func (svc *Service) GetBySlug(slug string) (Lesson, error) {
	if lsn, ok := store.Find(svc.st, Collection, func(l Lesson) bool { return l.Slug == slug }); ok {
		return lsn, nil
	}
	return Lesson{}, ErrNotFound
}

func (svc *Service) QueryAll() []Lesson {
	return store.All[Lesson](svc.st, Collection)
}

func (svc *Service) ByTeacher(teacherID string) []Lesson {
	return store.Filter(svc.st, Collection, func(l Lesson) bool { return l.TeacherID == teacherID })
}

func (svc *Service) lessonChanged(id string) {
	for _, listener := range svc.listeners {
		listener.LessonChanged(id)
	}
}
