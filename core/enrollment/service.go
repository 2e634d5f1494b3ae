package enrollment

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

var (
	ErrNotFound           = errors.New("enrollment not found")
	ErrAssignmentNotFound = errors.New("module assignment not found")
	ErrNameExists         = errors.New("an enrollment with this name already exists")
	ErrPermissionDenied   = errors.New("no permission to modify this enrollment")
	ErrAlreadyAssigned    = errors.New("module is already assigned under this enrollment")
)

type Service struct {
	st       *store.Store
	notifier core.Notifier
}

func NewService(st *store.Store, notifier core.Notifier) *Service {
	return &Service{st: st, notifier: notifier}
}

func (svc *Service) Create(teacherID string, ne NewEnrollment) (Enrollment, error) {
	if _, exists := store.Find(svc.st, Collection, func(e Enrollment) bool { return e.Name == ne.Name }); exists {
		return Enrollment{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}

	now := core.NowFunc().UTC()
	enr := Enrollment{
		ID:            core.NewID(),
		Slug:          core.Slugify(ne.Name, "enrollment"),
		Name:          ne.Name,
		Description:   ne.Description,
		CourseID:      ne.CourseID,
		TeacherID:     teacherID,
		ClassIDs:      ne.ClassIDs,
		AssignmentIDs: []string{},
		StartDate:     ne.StartDate,
		EndDate:       ne.EndDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.Add(svc.st, Collection, enr); err != nil {
		return Enrollment{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Enrollment %s created.", enr.Name))
	return enr, nil
}

func (svc *Service) Update(teacherID, id string, ue UpdateEnrollment) (Enrollment, error) {
	orig, ok := store.Get[Enrollment](svc.st, Collection, id)
	if !ok {
		return Enrollment{}, ErrNotFound
	}
	if orig.TeacherID != teacherID {
		return Enrollment{}, ErrPermissionDenied
	}
	if err := ue.Validate(orig); err != nil {
		return Enrollment{}, err
	}

	var updated Enrollment
	err := store.Update(svc.st, Collection, id, func(e Enrollment) Enrollment {
		if ue.Name != e.Name {
			e.Name = ue.Name
			e.Slug = core.Slugify(ue.Name, "enrollment")
		}
		e.Description = ue.Description
		if ue.ClassIDs != nil {
			e.ClassIDs = ue.ClassIDs
		}
		if ue.StartDate != nil {
			e.StartDate = *ue.StartDate
		}
		if ue.EndDate != nil {
			e.EndDate = *ue.EndDate
		}
		e.UpdatedAt = core.NowFunc().UTC()
		updated = e
		return e
	})
	if err != nil {
		return Enrollment{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Enrollment %s updated.", updated.Name))
	return updated, nil
}

func (svc *Service) Delete(teacherID, id string) error {
	enr, ok := store.Get[Enrollment](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	if enr.TeacherID != teacherID {
		return ErrPermissionDenied
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Enrollment %s deleted.", enr.Name))
	return nil
}

func (svc *Service) GetByID(id string) (Enrollment, error) {
	if enr, ok := store.Get[Enrollment](svc.st, Collection, id); ok {
		return enr, nil
	}
	return Enrollment{}, ErrNotFound
}

func (svc *Service) GetBySlug(slug string) (Enrollment, error) {
	if enr, ok := store.Find(svc.st, Collection, func(e Enrollment) bool { return e.Slug == slug }); ok {
		return enr, nil
	}
	return Enrollment{}, ErrNotFound
}

func (svc *Service) QueryAll() []Enrollment {
	return store.All[Enrollment](svc.st, Collection)
}

func (svc *Service) ByTeacher(teacherID string) []Enrollment {
	return store.Filter(svc.st, Collection, func(e Enrollment) bool { return e.TeacherID == teacherID })
}

// Assignments

// Assign prices a module under an enrollment and records the assignment id on
// the enrollment.
func (svc *Service) Assign(teacherID string, na NewAssignment) (ModuleAssignment, error) {
	enr, ok := store.Get[Enrollment](svc.st, Collection, na.EnrollmentID)
	if !ok {
		return ModuleAssignment{}, ErrNotFound
	}
	if enr.TeacherID != teacherID {
		return ModuleAssignment{}, ErrPermissionDenied
	}
	if _, exists := store.Find(svc.st, AssignmentCollection, func(ma ModuleAssignment) bool {
		return ma.ModuleID == na.ModuleID && ma.EnrollmentID == na.EnrollmentID
	}); exists {
		return ModuleAssignment{}, core.NewValidationError(ErrAlreadyAssigned)
	}

	now := core.NowFunc().UTC()
	asg := ModuleAssignment{
		ID:           core.NewID(),
		ModuleID:     na.ModuleID,
		EnrollmentID: na.EnrollmentID,
		PricePerHour: na.PricePerHour,
		Currency:     na.Currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Add(svc.st, AssignmentCollection, asg); err != nil {
		return ModuleAssignment{}, err
	}
	err := store.Update(svc.st, Collection, enr.ID, func(e Enrollment) Enrollment {
		e.AssignmentIDs = append(e.AssignmentIDs, asg.ID)
		e.UpdatedAt = now
		return e
	})
	if err != nil {
		return ModuleAssignment{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, "Module assignment created.")
	return asg, nil
}

func (svc *Service) Unassign(teacherID, assignmentID string) error {
	asg, ok := store.Get[ModuleAssignment](svc.st, AssignmentCollection, assignmentID)
	if !ok {
		return ErrAssignmentNotFound
	}
	enr, ok := store.Get[Enrollment](svc.st, Collection, asg.EnrollmentID)
	if ok && enr.TeacherID != teacherID {
		return ErrPermissionDenied
	}
	if err := svc.st.Delete(AssignmentCollection, assignmentID); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return store.Update(svc.st, Collection, enr.ID, func(e Enrollment) Enrollment {
		kept := make([]string, 0, len(e.AssignmentIDs))
		for _, id := range e.AssignmentIDs {
			if id != assignmentID {
				kept = append(kept, id)
			}
		}
		e.AssignmentIDs = kept
		e.UpdatedAt = core.NowFunc().UTC()
		return e
	})
}

// AssignmentFor looks up the rate for a module under an enrollment.
func (svc *Service) AssignmentFor(moduleID, enrollmentID string) (ModuleAssignment, bool) {
	return store.Find(svc.st, AssignmentCollection, func(ma ModuleAssignment) bool {
		return ma.ModuleID == moduleID && ma.EnrollmentID == enrollmentID
	})
}

func (svc *Service) Assignments(enrollmentID string) []ModuleAssignment {
	return store.Filter(svc.st, AssignmentCollection, func(ma ModuleAssignment) bool {
		return ma.EnrollmentID == enrollmentID
	})
}
