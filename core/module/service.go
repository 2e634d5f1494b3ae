package module

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/topic"
)

var (
	ErrNotFound         = errors.New("module not found")
	ErrNameExists       = errors.New("a module with this name already exists")
	ErrLinkNotFound     = errors.New("lesson is not linked to this module")
	ErrAlreadyLinked    = errors.New("already linked to this module")
	ErrPermissionDenied = errors.New("no permission to modify this module")
	ErrNotEditable      = errors.New("only private modules can be modified")
	ErrOrderMismatch    = errors.New("new order does not match the module's lessons")
)

type Service struct {
	st       *store.Store
	notifier core.Notifier
}

func NewService(st *store.Store, notifier core.Notifier) *Service {
	return &Service{st: st, notifier: notifier}
}

func (svc *Service) Create(teacherID string, nm NewModule) (Module, error) {
	if _, exists := store.Find(svc.st, Collection, func(m Module) bool { return m.Name == nm.Name }); exists {
		return Module{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}

	now := core.NowFunc().UTC()
	mod := Module{
		ID:                      core.NewID(),
		Slug:                    core.Slugify(nm.Name, "module"),
		Name:                    nm.Name,
		Description:             nm.Description,
		Category:                nm.Category,
		TotalMinutes:            nm.TotalMinutes,
		AverageMinutesPerLesson: nm.AverageMinutesPerLesson,
		MinutesToAllocate:       nm.TotalMinutes,
		CreatorID:               teacherID,
		OwnerIDs:                []string{teacherID},
		PublishStatus:           core.PublishPrivate,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := store.Add(svc.st, Collection, mod); err != nil {
		return Module{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Module %s created.", mod.Name))
	return mod, nil
}

func (svc *Service) Update(teacherID, id string, um UpdateModule) (Module, error) {
	orig, ok := store.Get[Module](svc.st, Collection, id)
	if !ok {
		return Module{}, ErrNotFound
	}
	if !core.CanEdit(orig, teacherID) {
		return Module{}, ErrPermissionDenied
	}
	if !orig.PublishStatus.Editable() {
		return Module{}, ErrNotEditable
	}

	var updated Module
	err := store.Update(svc.st, Collection, id, func(m Module) Module {
		m.Name = um.Name
		m.Description = um.Description
		m.Category = um.Category
		if um.TotalMinutes != nil {
			m.TotalMinutes = *um.TotalMinutes
		}
		if um.AverageMinutesPerLesson != nil {
			m.AverageMinutesPerLesson = *um.AverageMinutesPerLesson
		}
		m.MinutesToAllocate = m.TotalMinutes - svc.allocatedMinutes(id)
		m.UpdatedAt = core.NowFunc().UTC()
		updated = m
		return m
	})
	if err != nil {
		return Module{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Module %s updated.", updated.Name))
	return updated, nil
}

func (svc *Service) Delete(teacherID, id string) error {
	mod, ok := store.Get[Module](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	if !core.CanDelete(mod, teacherID) {
		return ErrPermissionDenied
	}
	if !mod.PublishStatus.Editable() {
		return ErrNotEditable
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Module %s deleted.", mod.Name))
	return nil
}

func (svc *Service) GetByID(id string) (Module, error) {
	if mod, ok := store.Get[Module](svc.st, Collection, id); ok {
		return mod, nil
	}
	return Module{}, ErrNotFound
}

func (svc *Service) GetBySlug(slug string) (Module, error) {
	if mod, ok := store.Find(svc.st, Collection, func(m Module) bool { return m.Slug == slug }); ok {
		return mod, nil
	}
	return Module{}, ErrNotFound
}

func (svc *Service) QueryAll() []Module {
	return store.All[Module](svc.st, Collection)
}

func (svc *Service) ByTeacher(teacherID string) []Module {
	return store.Filter(svc.st, Collection, func(m Module) bool {
		return m.CreatorID == teacherID || core.ContainsString(m.OwnerIDs, teacherID)
	})
}

// Categories returns the distinct non-empty categories in first-seen order.
func (svc *Service) Categories() []string {
	return core.DistinctCategories(store.All[Module](svc.st, Collection), func(m Module) string { return m.Category })
}

// Lesson links

// AddLesson links a lesson into the module and rebalances its minute budget.
func (svc *Service) AddLesson(teacherID, moduleID, lessonID string) (ModuleLesson, error) {
	if _, ok := store.Get[Module](svc.st, Collection, moduleID); !ok {
		return ModuleLesson{}, ErrNotFound
	}
	if _, linked := store.Find(svc.st, LessonLinkCollection, func(ml ModuleLesson) bool {
		return ml.ModuleID == moduleID && ml.LessonID == lessonID
	}); linked {
		return ModuleLesson{}, core.NewValidationError(ErrAlreadyLinked)
	}

	now := core.NowFunc().UTC()
	link := ModuleLesson{
		ID:        core.NewID(),
		ModuleID:  moduleID,
		LessonID:  lessonID,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Add(svc.st, LessonLinkCollection, link); err != nil {
		return ModuleLesson{}, err
	}
	if err := svc.RecalcMinutes(moduleID); err != nil {
		return ModuleLesson{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, "Lesson added to module.")
	return link, nil
}

// RemoveLesson unlinks a lesson and rebalances the module's minute budget.
func (svc *Service) RemoveLesson(teacherID, moduleID, lessonID string) error {
	link, ok := store.Find(svc.st, LessonLinkCollection, func(ml ModuleLesson) bool {
		return ml.ModuleID == moduleID && ml.LessonID == lessonID && ml.TeacherID == teacherID
	})
	if !ok {
		return ErrLinkNotFound
	}
	if err := svc.st.Delete(LessonLinkCollection, link.ID); err != nil {
		return err
	}
	if err := svc.RecalcMinutes(moduleID); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, "Lesson removed from module.")
	return nil
}

// LessonsForModule joins moduleLessons to lessons, in link insertion order.
// Unresolvable lesson ids are dropped; absent relations yield an empty list.
func (svc *Service) LessonsForModule(moduleID string) []lesson.Lesson {
	links := store.Filter(svc.st, LessonLinkCollection, func(ml ModuleLesson) bool { return ml.ModuleID == moduleID })
	out := make([]lesson.Lesson, 0, len(links))
	for _, link := range links {
		if lsn, ok := store.Get[lesson.Lesson](svc.st, lesson.Collection, link.LessonID); ok {
			out = append(out, lsn)
		}
	}
	return out
}

// ModulesForLesson returns the ids of modules the lesson is linked into.
func (svc *Service) ModulesForLesson(lessonID string) []string {
	links := store.Filter(svc.st, LessonLinkCollection, func(ml ModuleLesson) bool { return ml.LessonID == lessonID })
	out := make([]string, 0, len(links))
	for _, link := range links {
		out = append(out, link.ModuleID)
	}
	return out
}

// SetLectured flips the per-module lectured flag of a linked lesson.
func (svc *Service) SetLectured(teacherID, moduleID, lessonID string, lectured bool) error {
	link, ok := store.Find(svc.st, LessonLinkCollection, func(ml ModuleLesson) bool {
		return ml.ModuleID == moduleID && ml.LessonID == lessonID && ml.TeacherID == teacherID
	})
	if !ok {
		return ErrLinkNotFound
	}
	err := store.Update(svc.st, LessonLinkCollection, link.ID, func(ml ModuleLesson) ModuleLesson {
		ml.Lectured = lectured
		ml.UpdatedAt = core.NowFunc().UTC()
		return ml
	})
	if err != nil {
		return err
	}
	state := "not lectured"
	if lectured {
		state = "lectured"
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson marked %s.", state))
	return nil
}

// ReorderLessons rewrites the Order field of the module's lessons to match
// the given lesson-id sequence. The sequence must cover the module exactly.
func (svc *Service) ReorderLessons(teacherID, moduleID string, orderedLessonIDs []string) error {
	links := store.Filter(svc.st, LessonLinkCollection, func(ml ModuleLesson) bool {
		return ml.ModuleID == moduleID && ml.TeacherID == teacherID
	})
	if len(links) != len(orderedLessonIDs) {
		return core.NewValidationError(ErrOrderMismatch)
	}
	linked := make(map[string]struct{}, len(links))
	for _, link := range links {
		linked[link.LessonID] = struct{}{}
	}
	for _, id := range orderedLessonIDs {
		if _, ok := linked[id]; !ok {
			return core.NewValidationError(ErrOrderMismatch)
		}
	}

	for position, id := range orderedLessonIDs {
		if err := store.Update(svc.st, lesson.Collection, id, func(l lesson.Lesson) lesson.Lesson {
			l.Order = position
			l.UpdatedAt = core.NowFunc().UTC()
			return l
		}); err != nil {
			return err
		}
	}
	svc.notifier.Notify(core.NotifySuccess, "Lesson order updated.")
	return nil
}

// Topic links

func (svc *Service) AddTopic(teacherID, moduleID, topicID string) (ModuleTopic, error) {
	if _, ok := store.Get[Module](svc.st, Collection, moduleID); !ok {
		return ModuleTopic{}, ErrNotFound
	}
	if _, linked := store.Find(svc.st, TopicLinkCollection, func(mt ModuleTopic) bool {
		return mt.ModuleID == moduleID && mt.TopicID == topicID
	}); linked {
		return ModuleTopic{}, core.NewValidationError(ErrAlreadyLinked)
	}

	now := core.NowFunc().UTC()
	link := ModuleTopic{
		ID:        core.NewID(),
		ModuleID:  moduleID,
		TopicID:   topicID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Add(svc.st, TopicLinkCollection, link); err != nil {
		return ModuleTopic{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, "Topic added to module.")
	return link, nil
}

func (svc *Service) RemoveTopic(teacherID, moduleID, topicID string) error {
	link, ok := store.Find(svc.st, TopicLinkCollection, func(mt ModuleTopic) bool {
		return mt.ModuleID == moduleID && mt.TopicID == topicID
	})
	if !ok {
		return ErrLinkNotFound
	}
	if err := svc.st.Delete(TopicLinkCollection, link.ID); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, "Topic removed from module.")
	return nil
}

// TopicsForModule joins moduleTopics to topics, in link insertion order.
func (svc *Service) TopicsForModule(moduleID string) []topic.Topic {
	links := store.Filter(svc.st, TopicLinkCollection, func(mt ModuleTopic) bool { return mt.ModuleID == moduleID })
	out := make([]topic.Topic, 0, len(links))
	for _, link := range links {
		if tpc, ok := store.Get[topic.Topic](svc.st, topic.Collection, link.TopicID); ok {
			out = append(out, tpc)
		}
	}
	return out
}

// Minute budget

// RecalcMinutes recomputes MinutesToAllocate as TotalMinutes minus the sum
// of linked lesson durations.
func (svc *Service) RecalcMinutes(moduleID string) error {
	allocated := svc.allocatedMinutes(moduleID)
	return store.Update(svc.st, Collection, moduleID, func(m Module) Module {
		m.MinutesToAllocate = m.TotalMinutes - allocated
		return m
	})
}

// LessonChanged implements lesson.ChangeListener: any module containing the
// lesson rebalances its minute budget.
func (svc *Service) LessonChanged(lessonID string) {
	for _, moduleID := range svc.ModulesForLesson(lessonID) {
		if err := svc.RecalcMinutes(moduleID); err != nil {
			svc.notifier.Notify(core.NotifyError, "Failed to rebalance module minutes.")
		}
	}
}

func (svc *Service) allocatedMinutes(moduleID string) int {
	var total int
	for _, lsn := range svc.LessonsForModule(moduleID) {
		total += lsn.Duration
	}
	return total
}

// SortedByOrder returns a copy of lessons sorted ascending by Order.
func SortedByOrder(lessons []lesson.Lesson) []lesson.Lesson {
	out := append([]lesson.Lesson{}, lessons...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
