package course

import (
	"testing"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/store"
)

func setup() (*Service, *module.Service, *store.Store) {
	st := store.New(store.Options{})
	return NewService(st, core.NopNotifier{}), module.NewService(st, core.NopNotifier{}), st
}

func createModule(t *testing.T, modSvc *module.Service, teacherID, name string) module.Module {
	t.Helper()
	mod, err := modSvc.Create(teacherID, module.NewModule{
		Name:                    name,
		Category:                "Programming",
		TotalMinutes:            120,
		AverageMinutesPerLesson: 30,
	})
	if err != nil {
		t.Fatalf("modSvc.Create(%s) error = %v", name, err)
	}
	return mod
}

func TestService_Create(t *testing.T) {
	svc, _, _ := setup()

	crs, err := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if crs.Slug != "course-web-development" {
		t.Errorf("Slug = %q, want %q", crs.Slug, "course-web-development")
	}
	if crs.Status != core.StatusDraft {
		t.Errorf("Status = %q, want %q", crs.Status, core.StatusDraft)
	}
	if crs.PublishStatus != core.PublishPrivate {
		t.Errorf("PublishStatus = %q, want %q", crs.PublishStatus, core.PublishPrivate)
	}
	if crs.CreatorID != "t1" || !core.ContainsString(crs.OwnerIDs, "t1") {
		t.Errorf("creator/owners = %q/%v, want t1 in both", crs.CreatorID, crs.OwnerIDs)
	}

	if _, err = svc.Create("t2", NewCourse{Name: "Web Development", Category: "Programming"}); !core.IsValidationError(err) {
		t.Errorf("Create() duplicate name error = %v, want validation error", err)
	}
}

func TestService_Update(t *testing.T) {
	svc, _, _ := setup()
	crs, _ := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})

	tests := []struct {
		name      string
		teacherID string
		id        string
		uc        UpdateCourse
		wantErr   error
	}{
		{name: "not found", teacherID: "t1", id: "nope", wantErr: ErrNotFound},
		{name: "not the owner", teacherID: "t2", id: crs.ID, wantErr: ErrPermissionDenied},
		{name: "rename", teacherID: "t1", id: crs.ID, uc: UpdateCourse{Name: "Web Dev"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.Update(tt.teacherID, tt.id, tt.uc)
			if err != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if updated.Name != "Web Dev" {
					t.Errorf("Name = %q, want %q", updated.Name, "Web Dev")
				}
				if updated.Category != "Programming" {
					t.Errorf("Category = %q, want kept", updated.Category)
				}
			}
		})
	}
}

func TestService_Update_publishedIsFrozen(t *testing.T) {
	svc, _, st := setup()
	crs, _ := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})

	_ = store.Update(st, Collection, crs.ID, func(c Course) Course {
		c.PublishStatus = core.PublishForSale
		return c
	})

	if _, err := svc.Update("t1", crs.ID, UpdateCourse{Name: "Web Dev"}); err != ErrNotEditable {
		t.Errorf("Update() published error = %v, want ErrNotEditable", err)
	}
	if err := svc.Delete("t1", crs.ID); err != ErrNotEditable {
		t.Errorf("Delete() published error = %v, want ErrNotEditable", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _, _ := setup()
	crs, _ := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})

	if err := svc.Delete("t2", crs.ID); err != ErrPermissionDenied {
		t.Errorf("Delete() by non-creator error = %v, want ErrPermissionDenied", err)
	}
	if err := svc.Delete("t1", crs.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(crs.ID); err != ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestService_ModuleLinks(t *testing.T) {
	svc, modSvc, _ := setup()
	crs, _ := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})
	html := createModule(t, modSvc, "t1", "HTML Basics")
	css := createModule(t, modSvc, "t1", "CSS Basics")

	if _, err := svc.AddModule("t1", crs.ID, html.ID); err != nil {
		t.Fatalf("AddModule() error = %v", err)
	}
	if _, err := svc.AddModule("t1", crs.ID, css.ID); err != nil {
		t.Fatalf("AddModule() error = %v", err)
	}
	if _, err := svc.AddModule("t1", crs.ID, html.ID); !core.IsValidationError(err) {
		t.Errorf("AddModule() duplicate error = %v, want validation error", err)
	}

	mods := svc.ModulesForCourse(crs.ID)
	if len(mods) != 2 || mods[0].ID != html.ID || mods[1].ID != css.ID {
		t.Errorf("ModulesForCourse() = %v, want HTML,CSS in link order", mods)
	}

	courses := svc.CoursesForModule(html.ID)
	if len(courses) != 1 || courses[0].ID != crs.ID {
		t.Errorf("CoursesForModule() = %v, want the course", courses)
	}

	// only the linking teacher may unlink
	if err := svc.RemoveModule("t2", crs.ID, html.ID); err != ErrLinkNotFound {
		t.Errorf("RemoveModule() by other teacher error = %v, want ErrLinkNotFound", err)
	}
	if err := svc.RemoveModule("t1", crs.ID, html.ID); err != nil {
		t.Fatalf("RemoveModule() error = %v", err)
	}
	if mods = svc.ModulesForCourse(crs.ID); len(mods) != 1 || mods[0].ID != css.ID {
		t.Errorf("ModulesForCourse() after remove = %v, want CSS only", mods)
	}
}

func TestService_SetModules(t *testing.T) {
	svc, modSvc, _ := setup()
	crs, _ := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})
	html := createModule(t, modSvc, "t1", "HTML Basics")
	css := createModule(t, modSvc, "t1", "CSS Basics")
	js := createModule(t, modSvc, "t1", "JS Basics")
	_, _ = svc.AddModule("t1", crs.ID, html.ID)
	_, _ = svc.AddModule("t1", crs.ID, css.ID)

	// drops CSS, keeps HTML, adds JS
	if err := svc.SetModules("t1", crs.ID, []string{html.ID, js.ID}); err != nil {
		t.Fatalf("SetModules() error = %v", err)
	}

	mods := svc.ModulesForCourse(crs.ID)
	if len(mods) != 2 || mods[0].ID != html.ID || mods[1].ID != js.ID {
		t.Errorf("ModulesForCourse() = %v, want HTML,JS", mods)
	}
}

func TestService_WithModules(t *testing.T) {
	svc, modSvc, _ := setup()
	crs, _ := svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})
	html := createModule(t, modSvc, "t1", "HTML Basics")
	_, _ = svc.AddModule("t1", crs.ID, html.ID)

	got, err := svc.WithModules(crs.ID)
	if err != nil {
		t.Fatalf("WithModules() error = %v", err)
	}
	if got.Course.ID != crs.ID || len(got.Modules) != 1 || got.Modules[0].ID != html.ID {
		t.Errorf("WithModules() = %v, want course with HTML module", got)
	}

	if _, err = svc.WithModules("nope"); err != ErrNotFound {
		t.Errorf("WithModules() missing course error = %v, want ErrNotFound", err)
	}
}

func TestService_Categories(t *testing.T) {
	svc, _, _ := setup()
	_, _ = svc.Create("t1", NewCourse{Name: "Web Development", Category: "Programming"})
	_, _ = svc.Create("t1", NewCourse{Name: "Guitar", Category: "Music"})
	_, _ = svc.Create("t1", NewCourse{Name: "Go Basics", Category: "Programming"})

	got := svc.Categories()
	if len(got) != 2 || got[0] != "Programming" || got[1] != "Music" {
		t.Errorf("Categories() = %v, want [Programming Music]", got)
	}
}
