package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/course"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/store"
)

var (
	ErrNotFound           = errors.New("lesson is not available for scheduling")
	ErrEntryNotFound      = errors.New("schedule entry not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrPermissionDenied   = errors.New("no permission to modify this schedule entry")
	ErrBadClock           = errors.New("invalid start time")
)

type Service struct {
	st       *store.Store
	notifier core.Notifier
	logger   core.Logger
}

// NewService wires the service and subscribes the active-lessons view to
// wholesale replacements of the schedule collection (hydrate, restore).
func NewService(st *store.Store, notifier core.Notifier, logger core.Logger) *Service {
	svc := &Service{st: st, notifier: notifier, logger: logger}
	st.OnReplace(Collection, func() {
		if err := svc.Refresh(); err != nil {
			logger.Error("refreshing active lessons failed", err)
		}
	})
	return svc
}

func (svc *Service) enrollmentBySlug(slug string) (enrollment.Enrollment, bool) {
	return store.Find(svc.st, enrollment.Collection, func(e enrollment.Enrollment) bool { return e.Slug == slug })
}

// moduleInCourse reports whether the module is linked into the enrollment's
// course.
func (svc *Service) moduleInCourse(enr enrollment.Enrollment, moduleID string) bool {
	_, ok := store.Find(svc.st, course.ModuleLinkCollection, func(cm course.CourseModule) bool {
		return cm.CourseID == enr.CourseID && cm.ModuleID == moduleID
	})
	return ok
}

func (svc *Service) unlectured(moduleID string) []ModuleLessonView {
	links := store.Filter(svc.st, module.LessonLinkCollection, func(ml module.ModuleLesson) bool {
		return ml.ModuleID == moduleID && !ml.Lectured
	})
	out := make([]ModuleLessonView, 0, len(links))
	for _, link := range links {
		if lsn, ok := store.Get[lesson.Lesson](svc.st, lesson.Collection, link.LessonID); ok {
			out = append(out, ModuleLessonView{Lesson: lsn, ModuleID: moduleID, Lectured: link.Lectured})
		}
	}
	return out
}

func sortByOrder(views []ModuleLessonView) []ModuleLessonView {
	sort.SliceStable(views, func(i, j int) bool { return views[i].Order < views[j].Order })
	return views
}

// UnlecturedModuleLessons returns the module's not-yet-lectured lessons,
// sorted by lesson order. The module must be linked into the enrollment's
// course; otherwise the result is empty.
func (svc *Service) UnlecturedModuleLessons(slug, moduleID string) []ModuleLessonView {
	enr, ok := svc.enrollmentBySlug(slug)
	if !ok || !svc.moduleInCourse(enr, moduleID) {
		return []ModuleLessonView{}
	}
	return sortByOrder(svc.unlectured(moduleID))
}

// UnlecturedForEnrollment unions the unlectured lessons of every module in
// the enrollment's course, sorted by lesson order.
func (svc *Service) UnlecturedForEnrollment(slug string) []ModuleLessonView {
	enr, ok := svc.enrollmentBySlug(slug)
	if !ok {
		return []ModuleLessonView{}
	}
	links := store.Filter(svc.st, course.ModuleLinkCollection, func(cm course.CourseModule) bool {
		return cm.CourseID == enr.CourseID
	})
	out := []ModuleLessonView{}
	for _, link := range links {
		out = append(out, svc.unlectured(link.ModuleID)...)
	}
	return sortByOrder(out)
}

// Apply places an unlectured lesson on the calendar: start is day at the
// given wall-clock time, end is start plus the lesson's duration. The entry
// is appended without touching existing ones, and the lectured flag is left
// alone so the lesson stays schedulable until explicitly marked.
func (svc *Service) Apply(teacherID, slug, moduleID, classID, lessonID string, day time.Time, clock string) (Entry, error) {
	enr, ok := svc.enrollmentBySlug(slug)
	if !ok {
		return Entry{}, ErrEnrollmentNotFound
	}

	var view ModuleLessonView
	ok = false
	for _, v := range svc.UnlecturedModuleLessons(slug, moduleID) {
		if v.Lesson.ID == lessonID {
			view, ok = v, true
			break
		}
	}
	if !ok {
		return Entry{}, ErrNotFound
	}

	hour, minute, err := core.ParseClock(clock)
	if err != nil {
		return Entry{}, core.NewValidationError(ErrBadClock, core.FieldError{Field: "startTime", Error: ErrBadClock.Error()})
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	end := start.Add(time.Duration(view.Duration) * time.Minute)

	now := core.NowFunc().UTC()
	entry := Entry{
		ID:           core.NewID(),
		LessonID:     lessonID,
		ModuleID:     moduleID,
		ClassID:      classID,
		EnrollmentID: enr.ID,
		TeacherID:    teacherID,
		Name:         view.Name,
		Duration:     view.Duration,
		Order:        view.Order,
		StartTime:    start,
		EndTime:      end,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Add(svc.st, Collection, entry); err != nil {
		return Entry{}, err
	}
	if err := svc.Refresh(); err != nil {
		return Entry{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson %s scheduled for %s.", entry.Name, core.FormatDateTime(start)))
	return entry, nil
}

// Scheduled returns the teacher's calendar entries for a module under an
// enrollment, annotated with display-formatted instants.
func (svc *Service) Scheduled(slug, moduleID, teacherID string) []ScheduledEntry {
	enr, ok := svc.enrollmentBySlug(slug)
	if !ok {
		return []ScheduledEntry{}
	}
	entries := store.Filter(svc.st, Collection, func(e Entry) bool {
		return e.EnrollmentID == enr.ID && e.ModuleID == moduleID && e.TeacherID == teacherID
	})
	out := make([]ScheduledEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.annotate())
	}
	return out
}

// UpdateEntry moves an entry to a new day and wall-clock time, keeping its
// duration.
func (svc *Service) UpdateEntry(teacherID, id string, day time.Time, clock string) (Entry, error) {
	orig, ok := store.Get[Entry](svc.st, Collection, id)
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	if orig.TeacherID != teacherID {
		return Entry{}, ErrPermissionDenied
	}
	hour, minute, err := core.ParseClock(clock)
	if err != nil {
		return Entry{}, core.NewValidationError(ErrBadClock, core.FieldError{Field: "startTime", Error: ErrBadClock.Error()})
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())

	var updated Entry
	err = store.Update(svc.st, Collection, id, func(e Entry) Entry {
		e.StartTime = start
		e.EndTime = start.Add(time.Duration(e.Duration) * time.Minute)
		e.UpdatedAt = core.NowFunc().UTC()
		updated = e
		return e
	})
	if err != nil {
		return Entry{}, err
	}
	if err := svc.Refresh(); err != nil {
		return Entry{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson %s rescheduled for %s.", updated.Name, core.FormatDateTime(start)))
	return updated, nil
}

func (svc *Service) DeleteEntry(teacherID, id string) error {
	entry, ok := store.Get[Entry](svc.st, Collection, id)
	if !ok {
		return ErrEntryNotFound
	}
	if entry.TeacherID != teacherID {
		return ErrPermissionDenied
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	if err := svc.Refresh(); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Lesson %s unscheduled.", entry.Name))
	return nil
}

// ByTeacher returns all of the teacher's calendar entries.
func (svc *Service) ByTeacher(teacherID string) []Entry {
	return store.Filter(svc.st, Collection, func(e Entry) bool { return e.TeacherID == teacherID })
}

// Todays returns the teacher's entries whose window covers the current
// instant: startTime <= now < endTime.
func (svc *Service) Todays(teacherID string) []Entry {
	now := core.NowFunc()
	return store.Filter(svc.st, Collection, func(e Entry) bool {
		if e.TeacherID != teacherID {
			return false
		}
		start, end := e.Window()
		return !now.Before(start) && now.Before(end)
	})
}

// Refresh recomputes the active-lessons view from the calendar and replaces
// the derived collection only when its JSON serialization actually changed,
// so downstream consumers are not churned by equivalent recomputations.
func (svc *Service) Refresh() error {
	now := core.NowFunc()
	active := store.Filter(svc.st, Collection, func(e Entry) bool {
		start, end := e.Window()
		return !now.Before(start) && now.Before(end)
	})
	current := store.All[Entry](svc.st, ActiveCollection)

	nextJSON, err := json.Marshal(active)
	if err != nil {
		return errors.Wrap(err, "encoding active lessons")
	}
	curJSON, err := json.Marshal(current)
	if err != nil {
		return errors.Wrap(err, "encoding active lessons")
	}
	if bytes.Equal(nextJSON, curJSON) {
		return nil
	}
	return store.Replace(svc.st, ActiveCollection, active)
}

// Active returns the derived active-lessons view as last refreshed.
func (svc *Service) Active() []Entry {
	return store.All[Entry](svc.st, ActiveCollection)
}
