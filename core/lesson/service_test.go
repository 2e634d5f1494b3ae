package lesson

import (
	"testing"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

type listenerMock struct {
	changed []string
}

func (l *listenerMock) LessonChanged(lessonID string) {
	l.changed = append(l.changed, lessonID)
}

func setup() (*Service, *listenerMock) {
	listener := &listenerMock{}
	return NewService(store.New(store.Options{}), core.NopNotifier{}, listener), listener
}

func TestService_Create(t *testing.T) {
	svc, _ := setup()

	lsn, err := svc.Create("t1", NewLesson{Name: "HTML Intro", Duration: 45})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if lsn.Slug != "lesson-html-intro" {
		t.Errorf("Slug = %q, want %q", lsn.Slug, "lesson-html-intro")
	}
	if lsn.Status != core.StatusDraft {
		t.Errorf("Status = %q, want %q", lsn.Status, core.StatusDraft)
	}
}

func TestService_Update(t *testing.T) {
	svc, listener := setup()
	lsn, _ := svc.Create("t1", NewLesson{Name: "HTML Intro", Duration: 45})

	if _, err := svc.Update("t2", lsn.ID, UpdateLesson{Name: "Intro"}); err != ErrPermissionDenied {
		t.Errorf("Update() by other teacher error = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.Update("t1", "nope", UpdateLesson{Name: "Intro"}); err != ErrNotFound {
		t.Errorf("Update() missing id error = %v, want ErrNotFound", err)
	}

	// a name-only update does not disturb duration listeners
	if _, err := svc.Update("t1", lsn.ID, UpdateLesson{Name: "Intro"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(listener.changed) != 0 {
		t.Errorf("listener.changed = %v, want none for a rename", listener.changed)
	}

	duration := 60
	updated, err := svc.Update("t1", lsn.ID, UpdateLesson{Name: "Intro", Duration: &duration})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Duration != 60 {
		t.Errorf("Duration = %d, want 60", updated.Duration)
	}
	if len(listener.changed) != 1 || listener.changed[0] != lsn.ID {
		t.Errorf("listener.changed = %v, want the lesson flagged once", listener.changed)
	}

	// setting the same duration again is not a change
	if _, err = svc.Update("t1", lsn.ID, UpdateLesson{Name: "Intro", Duration: &duration}); err != nil {
		t.Fatal(err)
	}
	if len(listener.changed) != 1 {
		t.Errorf("listener.changed = %v, want no extra notification", listener.changed)
	}
}

func TestService_Delete(t *testing.T) {
	svc, listener := setup()
	lsn, _ := svc.Create("t1", NewLesson{Name: "HTML Intro", Duration: 45})

	if err := svc.Delete("t2", lsn.ID); err != ErrPermissionDenied {
		t.Errorf("Delete() by other teacher error = %v, want ErrPermissionDenied", err)
	}
	if err := svc.Delete("t1", lsn.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(listener.changed) != 1 || listener.changed[0] != lsn.ID {
		t.Errorf("listener.changed = %v, want the deleted lesson flagged", listener.changed)
	}
	if _, err := svc.GetByID(lsn.ID); err != ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestService_ByTeacher(t *testing.T) {
	svc, _ := setup()
	_, _ = svc.Create("t1", NewLesson{Name: "HTML Intro", Duration: 45})
	_, _ = svc.Create("t1", NewLesson{Name: "CSS Intro", Duration: 30})
	_, _ = svc.Create("t2", NewLesson{Name: "JS Intro", Duration: 30})

	if got := svc.ByTeacher("t1"); len(got) != 2 {
		t.Errorf("ByTeacher() = %d lessons, want 2", len(got))
	}
}
