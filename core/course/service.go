package course

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/store"
)

var (
	ErrNotFound         = errors.New("course not found")
	ErrNameExists       = errors.New("a course with this name already exists")
	ErrLinkNotFound     = errors.New("module is not linked to this course")
	ErrAlreadyLinked    = errors.New("module is already linked to this course")
	ErrPermissionDenied = errors.New("no permission to modify this course")
	ErrNotEditable      = errors.New("only private courses can be modified")
)

type Service struct {
	st       *store.Store
	notifier core.Notifier
}

func NewService(st *store.Store, notifier core.Notifier) *Service {
	return &Service{st: st, notifier: notifier}
}

func (svc *Service) Create(teacherID string, nc NewCourse) (Course, error) {
	if _, exists := store.Find(svc.st, Collection, func(c Course) bool { return c.Name == nc.Name }); exists {
		return Course{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}

	now := core.NowFunc().UTC()
	crs := Course{
		ID:            core.NewID(),
		Slug:          core.Slugify(nc.Name, "course"),
		Name:          nc.Name,
		Description:   nc.Description,
		Category:      nc.Category,
		Status:        core.StatusDraft,
		PublishStatus: core.PublishPrivate,
		CreatorID:     teacherID,
		OwnerIDs:      []string{teacherID},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.Add(svc.st, Collection, crs); err != nil {
		return Course{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Course %s created.", crs.Name))
	return crs, nil
}

func (svc *Service) Update(teacherID, id string, uc UpdateCourse) (Course, error) {
	orig, ok := store.Get[Course](svc.st, Collection, id)
	if !ok {
		return Course{}, ErrNotFound
	}
	if !core.CanEdit(orig, teacherID) {
		return Course{}, ErrPermissionDenied
	}
	if !orig.PublishStatus.Editable() {
		return Course{}, ErrNotEditable
	}
	if err := uc.Validate(orig); err != nil {
		return Course{}, err
	}

	var updated Course
	err := store.Update(svc.st, Collection, id, func(c Course) Course {
		c.Name = uc.Name
		c.Description = uc.Description
		c.Category = uc.Category
		if uc.Status != nil {
			c.Status = *uc.Status
		}
		c.UpdatedAt = core.NowFunc().UTC()
		updated = c
		return c
	})
	if err != nil {
		return Course{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Course %s updated.", updated.Name))
	return updated, nil
}

func (svc *Service) Delete(teacherID, id string) error {
	crs, ok := store.Get[Course](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	if !core.CanDelete(crs, teacherID) {
		return ErrPermissionDenied
	}
	if !crs.PublishStatus.Editable() {
		return ErrNotEditable
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Course %s deleted.", crs.Name))
	return nil
}

func (svc *Service) GetByID(id string) (Course, error) {
	if crs, ok := store.Get[Course](svc.st, Collection, id); ok {
		return crs, nil
	}
	return Course{}, ErrNotFound
}

func (svc *Service) GetBySlug(slug string) (Course, error) {
	if crs, ok := store.Find(svc.st, Collection, func(c Course) bool { return c.Slug == slug }); ok {
		return crs, nil
	}
	return Course{}, ErrNotFound
}

func (svc *Service) QueryAll() []Course {
	return store.All[Course](svc.st, Collection)
}

func (svc *Service) ByCategory(category string) []Course {
	return store.Filter(svc.st, Collection, func(c Course) bool { return c.Category == category })
}

// Categories returns the distinct non-empty categories in first-seen order.
func (svc *Service) Categories() []string {
	return core.DistinctCategories(store.All[Course](svc.st, Collection), func(c Course) string { return c.Category })
}

func (svc *Service) ByTeacher(teacherID string) []Course {
	return store.Filter(svc.st, Collection, func(c Course) bool {
		return core.ContainsString(c.OwnerIDs, teacherID)
	})
}

// Module links

// AddModule links a module into the course.
func (svc *Service) AddModule(teacherID, courseID, moduleID string) (CourseModule, error) {
	if _, linked := store.Find(svc.st, ModuleLinkCollection, func(cm CourseModule) bool {
		return cm.CourseID == courseID && cm.ModuleID == moduleID
	}); linked {
		return CourseModule{}, core.NewValidationError(ErrAlreadyLinked)
	}

	now := core.NowFunc().UTC()
	link := CourseModule{
		ID:        core.NewID(),
		CourseID:  courseID,
		ModuleID:  moduleID,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Add(svc.st, ModuleLinkCollection, link); err != nil {
		return CourseModule{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, "Module added to course.")
	return link, nil
}

// RemoveModule unlinks a module from the course; only the linking teacher may.
func (svc *Service) RemoveModule(teacherID, courseID, moduleID string) error {
	link, ok := store.Find(svc.st, ModuleLinkCollection, func(cm CourseModule) bool {
		return cm.CourseID == courseID && cm.ModuleID == moduleID && cm.TeacherID == teacherID
	})
	if !ok {
		return ErrLinkNotFound
	}
	if err := svc.st.Delete(ModuleLinkCollection, link.ID); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, "Module removed from course.")
	return nil
}

// SetModules reconciles the course's module links against the given set:
// links missing from moduleIDs are removed, new ones are added.
func (svc *Service) SetModules(teacherID, courseID string, moduleIDs []string) error {
	current := make([]string, 0)
	for _, mod := range svc.ModulesForCourse(courseID) {
		current = append(current, mod.ID)
	}

	for _, id := range current {
		if !core.ContainsString(moduleIDs, id) {
			if err := svc.RemoveModule(teacherID, courseID, id); err != nil {
				return err
			}
		}
	}
	for _, id := range moduleIDs {
		if !core.ContainsString(current, id) {
			if _, err := svc.AddModule(teacherID, courseID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// ModulesForCourse joins courseModules to modules, in link insertion order.
// Unresolvable module ids are dropped; absent relations yield an empty list.
func (svc *Service) ModulesForCourse(courseID string) []module.Module {
	links := store.Filter(svc.st, ModuleLinkCollection, func(cm CourseModule) bool { return cm.CourseID == courseID })
	out := make([]module.Module, 0, len(links))
	for _, link := range links {
		if mod, ok := store.Get[module.Module](svc.st, module.Collection, link.ModuleID); ok {
			out = append(out, mod)
		}
	}
	return out
}

// CoursesForModule returns all courses that contain the module.
func (svc *Service) CoursesForModule(moduleID string) []Course {
	links := store.Filter(svc.st, ModuleLinkCollection, func(cm CourseModule) bool { return cm.ModuleID == moduleID })
	out := make([]Course, 0, len(links))
	for _, link := range links {
		if crs, ok := store.Get[Course](svc.st, Collection, link.CourseID); ok {
			out = append(out, crs)
		}
	}
	return out
}

// CourseWithModules is a course resolved with its linked modules.
type CourseWithModules struct {
	Course
	Modules []module.Module `json:"modules"`
}

func (svc *Service) WithModules(courseID string) (CourseWithModules, error) {
	crs, ok := store.Get[Course](svc.st, Collection, courseID)
	if !ok {
		return CourseWithModules{}, ErrNotFound
	}
	return CourseWithModules{Course: crs, Modules: svc.ModulesForCourse(courseID)}, nil
}
