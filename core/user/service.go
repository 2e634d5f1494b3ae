package user

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type Service struct {
	st *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

func (svc *Service) checkUniqueness(uname, email string, exclUsers ...User) error {
	excluded := func(u User) bool {
		for _, ex := range exclUsers {
			if ex.ID == u.ID {
				return true
			}
		}
		return false
	}

	var err error
	var field string
	if uname != "" {
		if _, taken := store.Find(svc.st, Collection, func(u User) bool { return u.Username == uname && !excluded(u) }); taken {
			err, field = ErrUsernameExists, "username"
		}
	}
	if err == nil && email != "" {
		if _, taken := store.Find(svc.st, Collection, func(u User) bool { return u.Email == email && !excluded(u) }); taken {
			err, field = ErrEmailExists, "email"
		}
	}
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(nu NewUser) (User, error) {
	now := core.NowFunc().UTC()
	usr := User{
		ID:        core.NewID(),
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if usr.IsTeacher() {
		usr.Teacher = &TeacherProfile{ID: core.NewID()}
	}
	if usr.IsStudent() {
		usr.Student = &StudentProfile{ID: core.NewID()}
	}
	if usr.IsAdmin() {
		usr.Admin = &AdminProfile{ID: core.NewID()}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	if err := store.Add(svc.st, Collection, usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) QueryAll() []User {
	return store.All[User](svc.st, Collection)
}

func (svc *Service) GetByID(id string) (User, error) {
	if usr, ok := store.Get[User](svc.st, Collection, id); ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (svc *Service) GetByUsername(uname string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	if usr, ok := store.Find(svc.st, Collection, func(u User) bool { return u.Username == uname }); ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (svc *Service) GetByEmail(email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if usr, ok := store.Find(svc.st, Collection, func(u User) bool { return u.Email == email }); ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (svc *Service) GetByUsernameOrEmail(uname string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	if usr, ok := store.Find(svc.st, Collection, func(u User) bool { return u.Username == uname || u.Email == uname }); ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

// Filter applies AND operation on available QueryFilter fields.
// QueryFilter.Search does a case-insensitive match on one of Name, Username or Email.
func (svc *Service) Filter(filter QueryFilter) []User {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.QueryAll()
	}
	search := strings.ToLower(filter.Search)
	return store.Filter(svc.st, Collection, func(u User) bool {
		if search != "" {
			if !strings.Contains(strings.ToLower(u.Name), search) &&
				!strings.Contains(strings.ToLower(u.Username), search) &&
				!strings.Contains(strings.ToLower(u.Email), search) {
				return false
			}
		}
		if filter.Roles != nil {
			var match bool
			for _, role := range filter.Roles {
				if u.RoleStartsWith(role) {
					match = true
					break
				}
			}
			if !match {
				return false
			}
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			return false
		}
		if !filter.CreatedFrom.IsZero() && u.CreatedAt.Before(filter.CreatedFrom) {
			return false
		}
		if !filter.CreatedTo.IsZero() && u.CreatedAt.After(filter.CreatedTo) {
			return false
		}
		return true
	})
}

func (svc *Service) Students() []User {
	return store.Filter(svc.st, Collection, func(u User) bool { return u.IsStudent() && !u.IsDeleted })
}

func (svc *Service) Teachers() []User {
	return store.Filter(svc.st, Collection, func(u User) bool { return u.IsTeacher() && !u.IsDeleted })
}

func (svc *Service) Update(id string, uu UpdateUser) (User, error) {
	if _, ok := store.Get[User](svc.st, Collection, id); !ok {
		return User{}, ErrNotFound
	}

	var hash []byte
	if uu.Password != "" {
		var tmp User
		if err := tmp.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
		hash = tmp.PasswordHash
	}

	var updated User
	err := store.Update(svc.st, Collection, id, func(u User) User {
		u.Name = uu.Name
		u.Username = uu.Username
		u.Email = uu.Email
		if uu.Roles != nil {
			u.Roles = uu.Roles
		}
		if uu.IsActive != nil {
			u.IsActive = *uu.IsActive
		}
		if hash != nil {
			u.PasswordHash = hash
		}
		u.UpdatedAt = core.NowFunc().UTC()
		updated = u
		return u
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// TouchLastLogin stamps the user's last successful authentication.
func (svc *Service) TouchLastLogin(id string) error {
	return store.Update(svc.st, Collection, id, func(u User) User {
		u.LastLogin = core.NowFunc().UTC()
		return u
	})
}

func (svc *Service) Delete(ids ...string) error {
	for _, id := range ids {
		if err := svc.st.Delete(Collection, id); err != nil {
			return err
		}
	}
	return nil
}
