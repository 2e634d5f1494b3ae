package topic

import (
	"testing"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

func setup() *Service {
	return NewService(store.New(store.Options{}), core.NopNotifier{})
}

func TestService_Create(t *testing.T) {
	svc := setup()

	tpc, err := svc.Create("t1", NewTopic{Name: "CSS Selectors", Category: "IT", Objectives: []string{"combinators", "specificity"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tpc.Slug != "topic-css-selectors" {
		t.Errorf("Slug = %q, want %q", tpc.Slug, "topic-css-selectors")
	}
	if len(tpc.Objectives) != 2 || tpc.Objectives[0].Description != "combinators" {
		t.Errorf("Objectives = %v, want the two seeded goals in order", tpc.Objectives)
	}

	if _, err = svc.Create("t2", NewTopic{Name: "CSS Selectors"}); !core.IsValidationError(err) {
		t.Errorf("Create() duplicate name error = %v, want validation error", err)
	}
}

func TestService_Objectives(t *testing.T) {
	svc := setup()
	tpc, _ := svc.Create("t1", NewTopic{Name: "CSS Selectors"})

	if _, err := svc.AddObjective("t2", tpc.ID, "combinators"); err != ErrPermissionDenied {
		t.Errorf("AddObjective() by other teacher error = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.AddObjective("t1", "nope", "combinators"); err != ErrNotFound {
		t.Errorf("AddObjective() missing topic error = %v, want ErrNotFound", err)
	}

	updated, err := svc.AddObjective("t1", tpc.ID, "combinators")
	if err != nil {
		t.Fatalf("AddObjective() error = %v", err)
	}
	if len(updated.Objectives) != 1 {
		t.Fatalf("Objectives = %v, want one", updated.Objectives)
	}

	// removing an unknown objective id is a no-op
	updated, err = svc.RemoveObjective("t1", tpc.ID, "nope")
	if err != nil || len(updated.Objectives) != 1 {
		t.Errorf("RemoveObjective(unknown) = %v, %v, want untouched list", updated.Objectives, err)
	}

	updated, err = svc.RemoveObjective("t1", tpc.ID, updated.Objectives[0].ID)
	if err != nil {
		t.Fatalf("RemoveObjective() error = %v", err)
	}
	if len(updated.Objectives) != 0 {
		t.Errorf("Objectives = %v, want empty", updated.Objectives)
	}
}

func TestService_Update_publishedIsFrozen(t *testing.T) {
	svc := setup()
	tpc, _ := svc.Create("t1", NewTopic{Name: "CSS Selectors"})

	_ = store.Update(svc.st, Collection, tpc.ID, func(t Topic) Topic {
		t.PublishStatus = core.PublishForSale
		return t
	})

	if _, err := svc.Update("t1", tpc.ID, UpdateTopic{Name: "CSS"}); err != ErrNotEditable {
		t.Errorf("Update() on published topic error = %v, want ErrNotEditable", err)
	}
	if err := svc.Delete("t1", tpc.ID); err != ErrNotEditable {
		t.Errorf("Delete() on published topic error = %v, want ErrNotEditable", err)
	}
}

func TestService_queries(t *testing.T) {
	svc := setup()
	_, _ = svc.Create("t1", NewTopic{Name: "CSS Selectors", Category: "IT"})
	_, _ = svc.Create("t1", NewTopic{Name: "Algebra", Category: "Math"})
	_, _ = svc.Create("t2", NewTopic{Name: "Grammar", Category: "IT"})

	if got := svc.ByTeacher("t1"); len(got) != 2 {
		t.Errorf("ByTeacher() = %d topics, want 2", len(got))
	}
	cats := svc.Categories()
	if len(cats) != 2 || cats[0] != "IT" || cats[1] != "Math" {
		t.Errorf("Categories() = %v, want [IT Math] first-seen", cats)
	}
	if _, err := svc.GetBySlug("topic-algebra"); err != nil {
		t.Errorf("GetBySlug() error = %v", err)
	}
}
