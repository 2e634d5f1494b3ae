package main

import (
	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/user"
)

// addTeacher updates or creates a teacher account.
func (cli *commandLine) addTeacher(name, uname, email, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	lookup := uname
	if lookup == "" {
		lookup = email
	}
	usr, err := cli.usrSvc.GetByUsernameOrEmail(lookup)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(user.NewUser{
			Name:     name,
			Username: uname,
			Email:    email,
			Password: pwd,
			Roles:    []string{user.RoleTeacher},
		})
		return err
	}

	roles := usr.Roles
	if !usr.IsTeacher() {
		roles = append(roles, user.RoleTeacher)
	}
	active := true
	_, err = cli.usrSvc.Update(usr.ID, user.UpdateUser{
		Name:     name,
		Username: usr.Username,
		Email:    usr.Email,
		Password: pwd,
		Roles:    roles,
		IsActive: &active,
	})
	return err
}
