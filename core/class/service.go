package class

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/user"
)

var (
	ErrNotFound         = errors.New("class not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrNameExists       = errors.New("a class with this name already exists")
	ErrPermissionDenied = errors.New("no permission to modify this class")
	ErrAlreadyEnrolled  = errors.New("student is already in this class")
)

type Service struct {
	st       *store.Store
	notifier core.Notifier
}

func NewService(st *store.Store, notifier core.Notifier) *Service {
	return &Service{st: st, notifier: notifier}
}

func (svc *Service) Create(teacherID string, nc NewClass) (Class, error) {
	if _, exists := store.Find(svc.st, Collection, func(c Class) bool { return c.Name == nc.Name }); exists {
		return Class{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}

	now := core.NowFunc().UTC()
	cls := Class{
		ID:          core.NewID(),
		Slug:        core.Slugify(nc.Name, "class"),
		Name:        nc.Name,
		Description: nc.Description,
		Color:       nc.Color,
		CourseID:    nc.CourseID,
		TeacherID:   teacherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Add(svc.st, Collection, cls); err != nil {
		return Class{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Class %s created.", cls.Name))
	return cls, nil
}

func (svc *Service) Update(teacherID, id string, uc UpdateClass) (Class, error) {
	orig, ok := store.Get[Class](svc.st, Collection, id)
	if !ok {
		return Class{}, ErrNotFound
	}
	if orig.TeacherID != teacherID {
		return Class{}, ErrPermissionDenied
	}
	if err := uc.Validate(orig); err != nil {
		return Class{}, err
	}

	var updated Class
	err := store.Update(svc.st, Collection, id, func(c Class) Class {
		c.Name = uc.Name
		c.Description = uc.Description
		if uc.Color != "" {
			c.Color = uc.Color
		}
		if uc.CourseID != nil {
			c.CourseID = *uc.CourseID
		}
		c.UpdatedAt = core.NowFunc().UTC()
		updated = c
		return c
	})
	if err != nil {
		return Class{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Class %s updated.", updated.Name))
	return updated, nil
}

func (svc *Service) Delete(teacherID, id string) error {
	cls, ok := store.Get[Class](svc.st, Collection, id)
	if !ok {
		return ErrNotFound
	}
	if cls.TeacherID != teacherID {
		return ErrPermissionDenied
	}
	if err := svc.st.Delete(Collection, id); err != nil {
		return err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Class %s deleted.", cls.Name))
	return nil
}

func (svc *Service) GetByID(id string) (Class, error) {
	if cls, ok := store.Get[Class](svc.st, Collection, id); ok {
		return cls, nil
	}
	return Class{}, ErrNotFound
}

func (svc *Service) GetBySlug(slug string) (Class, error) {
	if cls, ok := store.Find(svc.st, Collection, func(c Class) bool { return c.Slug == slug }); ok {
		return cls, nil
	}
	return Class{}, ErrNotFound
}

func (svc *Service) QueryAll() []Class {
	return store.All[Class](svc.st, Collection)
}

func (svc *Service) ByTeacher(teacherID string) []Class {
	return store.Filter(svc.st, Collection, func(c Class) bool { return c.TeacherID == teacherID })
}

// Roster

// AddStudent links a student user into the class roster. Adding an already
// enrolled student is rejected.
func (svc *Service) AddStudent(classID, studentID string) (ClassStudent, error) {
	if _, ok := store.Get[Class](svc.st, Collection, classID); !ok {
		return ClassStudent{}, ErrNotFound
	}
	if _, enrolled := store.Find(svc.st, StudentLinkCollection, func(cs ClassStudent) bool {
		return cs.ClassID == classID && cs.StudentID == studentID
	}); enrolled {
		return ClassStudent{}, core.NewValidationError(ErrAlreadyEnrolled)
	}

	now := core.NowFunc().UTC()
	link := ClassStudent{
		ID:        core.NewID(),
		ClassID:   classID,
		StudentID: studentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Add(svc.st, StudentLinkCollection, link); err != nil {
		return ClassStudent{}, err
	}
	return link, nil
}

// AddStudents bulk-enrolls students, skipping the ones already on the roster.
// A partial outcome is reported through the notifier.
func (svc *Service) AddStudents(classID string, studentIDs []string) (added int, err error) {
	for _, id := range studentIDs {
		if _, aerr := svc.AddStudent(classID, id); aerr != nil {
			if core.IsValidationError(aerr) {
				continue
			}
			return added, aerr
		}
		added++
	}
	if skipped := len(studentIDs) - added; skipped > 0 {
		svc.notifier.Notify(core.NotifyInfo, fmt.Sprintf("%d of %d students added; %d were already enrolled.", added, len(studentIDs), skipped))
	} else {
		svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("%d students added.", added))
	}
	return added, nil
}

func (svc *Service) RemoveStudent(classID, studentID string) error {
	link, ok := store.Find(svc.st, StudentLinkCollection, func(cs ClassStudent) bool {
		return cs.ClassID == classID && cs.StudentID == studentID
	})
	if !ok {
		return ErrNotFound
	}
	return svc.st.Delete(StudentLinkCollection, link.ID)
}

// StudentsInClass joins the roster to users, in roster insertion order. A
// roster entry whose user record is missing yields a stub carrying the raw id
// so the caller can still render and repair the row.
func (svc *Service) StudentsInClass(classID string) []user.User {
	links := store.Filter(svc.st, StudentLinkCollection, func(cs ClassStudent) bool { return cs.ClassID == classID })
	out := make([]user.User, 0, len(links))
	for _, link := range links {
		if usr, ok := store.Get[user.User](svc.st, user.Collection, link.StudentID); ok {
			out = append(out, usr)
		} else {
			out = append(out, user.User{ID: link.StudentID})
		}
	}
	return out
}

// ClassesForStudent returns the classes a student is enrolled in.
func (svc *Service) ClassesForStudent(studentID string) []Class {
	links := store.Filter(svc.st, StudentLinkCollection, func(cs ClassStudent) bool { return cs.StudentID == studentID })
	out := make([]Class, 0, len(links))
	for _, link := range links {
		if cls, ok := store.Get[Class](svc.st, Collection, link.ClassID); ok {
			out = append(out, cls)
		}
	}
	return out
}

// Teams

func (svc *Service) CreateTeam(teacherID string, nt NewTeam) (Team, error) {
	if _, ok := store.Get[Class](svc.st, Collection, nt.ClassID); !ok {
		return Team{}, ErrNotFound
	}
	now := core.NowFunc().UTC()
	team := Team{
		ID:        core.NewID(),
		Name:      nt.Name,
		ClassID:   nt.ClassID,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Add(svc.st, TeamCollection, team); err != nil {
		return Team{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, fmt.Sprintf("Team %s created.", team.Name))
	return team, nil
}

func (svc *Service) DeleteTeam(teacherID, teamID string) error {
	team, ok := store.Get[Team](svc.st, TeamCollection, teamID)
	if !ok {
		return ErrTeamNotFound
	}
	if team.TeacherID != teacherID {
		return ErrPermissionDenied
	}
	return svc.st.Delete(TeamCollection, teamID)
}

func (svc *Service) TeamsForClass(classID string) []Team {
	return store.Filter(svc.st, TeamCollection, func(t Team) bool { return t.ClassID == classID })
}

// AssignStudentToTeam moves a roster entry onto a team within the same class.
func (svc *Service) AssignStudentToTeam(classID, studentID, teamID string) error {
	team, ok := store.Get[Team](svc.st, TeamCollection, teamID)
	if !ok || team.ClassID != classID {
		return ErrTeamNotFound
	}
	link, ok := store.Find(svc.st, StudentLinkCollection, func(cs ClassStudent) bool {
		return cs.ClassID == classID && cs.StudentID == studentID
	})
	if !ok {
		return ErrNotFound
	}
	return store.Update(svc.st, StudentLinkCollection, link.ID, func(cs ClassStudent) ClassStudent {
		cs.TeamID = teamID
		cs.UpdatedAt = core.NowFunc().UTC()
		return cs
	})
}

// AssignModuleToTeam records that a team works through a module.
func (svc *Service) AssignModuleToTeam(teacherID, moduleID, teamID string) (ModuleTeam, error) {
	if _, ok := store.Get[Team](svc.st, TeamCollection, teamID); !ok {
		return ModuleTeam{}, ErrTeamNotFound
	}
	if link, ok := store.Find(svc.st, TeamLinkCollection, func(mt ModuleTeam) bool {
		return mt.ModuleID == moduleID && mt.TeamID == teamID
	}); ok {
		return link, nil
	}

	now := core.NowFunc().UTC()
	link := ModuleTeam{
		ID:        core.NewID(),
		ModuleID:  moduleID,
		TeamID:    teamID,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Add(svc.st, TeamLinkCollection, link); err != nil {
		return ModuleTeam{}, err
	}
	svc.notifier.Notify(core.NotifySuccess, "Module assigned to team.")
	return link, nil
}

func (svc *Service) UnassignModuleFromTeam(moduleID, teamID string) error {
	link, ok := store.Find(svc.st, TeamLinkCollection, func(mt ModuleTeam) bool {
		return mt.ModuleID == moduleID && mt.TeamID == teamID
	})
	if !ok {
		return ErrNotFound
	}
	return svc.st.Delete(TeamLinkCollection, link.ID)
}

func (svc *Service) ModulesForTeam(teamID string) []string {
	links := store.Filter(svc.st, TeamLinkCollection, func(mt ModuleTeam) bool { return mt.TeamID == teamID })
	out := make([]string, 0, len(links))
	for _, link := range links {
		out = append(out, link.ModuleID)
	}
	return out
}
