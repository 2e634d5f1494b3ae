package schedule

import (
	"testing"
	"time"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/course"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/store"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fixture is a minimal teaching setup: one course with one module holding two
// lessons, offered under one enrollment.
type fixture struct {
	st     *store.Store
	svc    *Service
	modSvc *module.Service
	enr    enrollment.Enrollment
	mod    module.Module
	intro  lesson.Lesson
	tags   lesson.Lesson
}

func setup(t *testing.T) *fixture {
	t.Helper()
	st := store.New(store.Options{})
	nop := core.NopNotifier{}

	modSvc := module.NewService(st, nop)
	lsnSvc := lesson.NewService(st, nop, modSvc)
	crsSvc := course.NewService(st, nop)
	enrSvc := enrollment.NewService(st, nop)
	svc := NewService(st, nop, nopLogger{})

	crs, err := crsSvc.Create("t1", course.NewCourse{Name: "Web Development", Category: "Programming"})
	if err != nil {
		t.Fatal(err)
	}
	mod, err := modSvc.Create("t1", module.NewModule{Name: "HTML Basics", Category: "Programming", TotalMinutes: 120, AverageMinutesPerLesson: 30})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = crsSvc.AddModule("t1", crs.ID, mod.ID); err != nil {
		t.Fatal(err)
	}
	intro, err := lsnSvc.Create("t1", lesson.NewLesson{Name: "Intro", Duration: 45, Order: 0})
	if err != nil {
		t.Fatal(err)
	}
	tags, err := lsnSvc.Create("t1", lesson.NewLesson{Name: "Tags", Duration: 30, Order: 1})
	if err != nil {
		t.Fatal(err)
	}
	// link in reverse order so sorting by lesson order is observable
	if _, err = modSvc.AddLesson("t1", mod.ID, tags.ID); err != nil {
		t.Fatal(err)
	}
	if _, err = modSvc.AddLesson("t1", mod.ID, intro.ID); err != nil {
		t.Fatal(err)
	}
	enr, err := enrSvc.Create("t1", enrollment.NewEnrollment{Name: "Fall Cohort", CourseID: crs.ID})
	if err != nil {
		t.Fatal(err)
	}

	return &fixture{st: st, svc: svc, modSvc: modSvc, enr: enr, mod: mod, intro: intro, tags: tags}
}

func TestService_UnlecturedModuleLessons(t *testing.T) {
	fx := setup(t)

	views := fx.svc.UnlecturedModuleLessons(fx.enr.Slug, fx.mod.ID)
	if len(views) != 2 || views[0].Lesson.ID != fx.intro.ID || views[1].Lesson.ID != fx.tags.ID {
		t.Fatalf("UnlecturedModuleLessons() = %v, want Intro,Tags by lesson order", views)
	}

	// lecturing a lesson removes it from the pool
	if err := fx.modSvc.SetLectured("t1", fx.mod.ID, fx.intro.ID, true); err != nil {
		t.Fatal(err)
	}
	views = fx.svc.UnlecturedModuleLessons(fx.enr.Slug, fx.mod.ID)
	if len(views) != 1 || views[0].Lesson.ID != fx.tags.ID {
		t.Errorf("UnlecturedModuleLessons() after SetLectured = %v, want Tags only", views)
	}

	// unknown enrollment or unlinked module read as empty, never as an error
	if got := fx.svc.UnlecturedModuleLessons("nope", fx.mod.ID); len(got) != 0 {
		t.Errorf("UnlecturedModuleLessons(unknown enrollment) = %v, want empty", got)
	}
	if got := fx.svc.UnlecturedModuleLessons(fx.enr.Slug, "nope"); len(got) != 0 {
		t.Errorf("UnlecturedModuleLessons(unlinked module) = %v, want empty", got)
	}
}

func TestService_UnlecturedForEnrollment(t *testing.T) {
	fx := setup(t)

	views := fx.svc.UnlecturedForEnrollment(fx.enr.Slug)
	if len(views) != 2 || views[0].Lesson.ID != fx.intro.ID || views[1].Lesson.ID != fx.tags.ID {
		t.Errorf("UnlecturedForEnrollment() = %v, want Intro,Tags", views)
	}
	if got := fx.svc.UnlecturedForEnrollment("nope"); len(got) != 0 {
		t.Errorf("UnlecturedForEnrollment(unknown) = %v, want empty", got)
	}
}

func TestService_Apply(t *testing.T) {
	fx := setup(t)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	entry, err := fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.intro.ID, day, "09:30")
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	wantStart := time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)
	if !entry.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", entry.StartTime, wantStart)
	}
	if got := entry.EndTime.Sub(entry.StartTime); got != 45*time.Minute {
		t.Errorf("window = %v, want the lesson duration (45m)", got)
	}
	if entry.Name != "Intro" || entry.Duration != 45 || entry.EnrollmentID != fx.enr.ID {
		t.Errorf("entry = %+v, want lesson fields copied onto it", entry)
	}

	// scheduling does not lecture the lesson; it stays schedulable
	if views := fx.svc.UnlecturedModuleLessons(fx.enr.Slug, fx.mod.ID); len(views) != 2 {
		t.Errorf("UnlecturedModuleLessons() after Apply = %d lessons, want still 2", len(views))
	}
}

func TestService_Apply_errors(t *testing.T) {
	fx := setup(t)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

	// lecture Intro so it is no longer schedulable
	if err := fx.modSvc.SetLectured("t1", fx.mod.ID, fx.intro.ID, true); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		slug     string
		lessonID string
		clock    string
		wantErr  error
	}{
		{name: "unknown enrollment", slug: "nope", lessonID: fx.tags.ID, clock: "09:30", wantErr: ErrEnrollmentNotFound},
		{name: "unknown lesson", slug: fx.enr.Slug, lessonID: "nope", clock: "09:30", wantErr: ErrNotFound},
		{name: "lectured lesson", slug: fx.enr.Slug, lessonID: fx.intro.ID, clock: "09:30", wantErr: ErrNotFound},
		{name: "bad clock", slug: fx.enr.Slug, lessonID: fx.tags.ID, clock: "25:99"},
		{name: "not a clock", slug: fx.enr.Slug, lessonID: fx.tags.ID, clock: "morning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Apply("t1", tt.slug, fx.mod.ID, "c1", tt.lessonID, day, tt.clock)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Apply() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if !core.IsValidationError(err) {
				t.Errorf("Apply() error = %v, want validation error", err)
			}
		})
	}
}

func TestService_UpdateEntry(t *testing.T) {
	fx := setup(t)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	entry, err := fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.intro.ID, day, "09:30")
	if err != nil {
		t.Fatal(err)
	}

	if _, err = fx.svc.UpdateEntry("t2", entry.ID, day, "10:00"); err != ErrPermissionDenied {
		t.Errorf("UpdateEntry() by other teacher error = %v, want ErrPermissionDenied", err)
	}
	if _, err = fx.svc.UpdateEntry("t1", "nope", day, "10:00"); err != ErrEntryNotFound {
		t.Errorf("UpdateEntry() missing id error = %v, want ErrEntryNotFound", err)
	}

	nextDay := day.AddDate(0, 0, 1)
	moved, err := fx.svc.UpdateEntry("t1", entry.ID, nextDay, "14:15")
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	wantStart := time.Date(2024, time.March, 5, 14, 15, 0, 0, time.UTC)
	if !moved.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v", moved.StartTime, wantStart)
	}
	if got := moved.EndTime.Sub(moved.StartTime); got != 45*time.Minute {
		t.Errorf("window = %v, want the duration kept (45m)", got)
	}
}

func TestService_DeleteEntry(t *testing.T) {
	fx := setup(t)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	entry, err := fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.intro.ID, day, "09:30")
	if err != nil {
		t.Fatal(err)
	}

	if err = fx.svc.DeleteEntry("t2", entry.ID); err != ErrPermissionDenied {
		t.Errorf("DeleteEntry() by other teacher error = %v, want ErrPermissionDenied", err)
	}
	if err = fx.svc.DeleteEntry("t1", entry.ID); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if got := fx.svc.ByTeacher("t1"); len(got) != 0 {
		t.Errorf("ByTeacher() after delete = %v, want empty", got)
	}
}

func TestService_Scheduled(t *testing.T) {
	fx := setup(t)
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	if _, err := fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.intro.ID, day, "09:30"); err != nil {
		t.Fatal(err)
	}

	got := fx.svc.Scheduled(fx.enr.Slug, fx.mod.ID, "t1")
	if len(got) != 1 {
		t.Fatalf("Scheduled() = %v, want one entry", got)
	}
	if got[0].FormattedStartTime != "04/03/2024 09:30" {
		t.Errorf("FormattedStartTime = %q, want %q", got[0].FormattedStartTime, "04/03/2024 09:30")
	}
	if got[0].FormattedEndTime != "04/03/2024 10:15" {
		t.Errorf("FormattedEndTime = %q, want %q", got[0].FormattedEndTime, "04/03/2024 10:15")
	}

	if other := fx.svc.Scheduled(fx.enr.Slug, fx.mod.ID, "t2"); len(other) != 0 {
		t.Errorf("Scheduled() for other teacher = %v, want empty", other)
	}
}

func TestService_TodaysAndActive(t *testing.T) {
	fx := setup(t)

	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return now }
	defer func() { core.NowFunc = time.Now }()

	day := now.Truncate(24 * time.Hour)
	// 09:30-10:15 covers now; 11:00-11:30 does not
	running, err := fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.intro.ID, day, "09:30")
	if err != nil {
		t.Fatal(err)
	}
	if _, err = fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.tags.ID, day, "11:00"); err != nil {
		t.Fatal(err)
	}

	todays := fx.svc.Todays("t1")
	if len(todays) != 1 || todays[0].ID != running.ID {
		t.Errorf("Todays() = %v, want the 09:30 entry only", todays)
	}

	active := fx.svc.Active()
	if len(active) != 1 || active[0].ID != running.ID {
		t.Errorf("Active() = %v, want the 09:30 entry only", active)
	}

	// window end is exclusive
	core.NowFunc = func() time.Time { return time.Date(2024, time.March, 4, 10, 15, 0, 0, time.UTC) }
	if err = fx.svc.Refresh(); err != nil {
		t.Fatal(err)
	}
	if active = fx.svc.Active(); len(active) != 0 {
		t.Errorf("Active() at window end = %v, want empty", active)
	}
}

func TestService_Refresh_noChurn(t *testing.T) {
	fx := setup(t)

	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return now }
	defer func() { core.NowFunc = time.Now }()

	day := now.Truncate(24 * time.Hour)
	if _, err := fx.svc.Apply("t1", fx.enr.Slug, fx.mod.ID, "c1", fx.intro.ID, day, "09:30"); err != nil {
		t.Fatal(err)
	}

	var fired int
	fx.st.OnReplace(ActiveCollection, func() { fired++ })

	// nothing changed between refreshes, the derived view must not be replaced
	if err := fx.svc.Refresh(); err != nil {
		t.Fatal(err)
	}
	if err := fx.svc.Refresh(); err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Errorf("active view replaced %d times without changes, want 0", fired)
	}
}
