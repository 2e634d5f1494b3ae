package main

import (
	"testing"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/user"
)

func newTestCLI(t *testing.T) *commandLine {
	t.Helper()
	st := store.New(store.Options{})
	return &commandLine{
		st:     st,
		usrSvc: user.NewService(st),
		conf:   &core.Config{BootstrapDir: t.TempDir()},
	}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func Test_commandLine_run(t *testing.T) {
	mockPassword(t, "Xk9$wqPz")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no command", args: []string{"admin"}, wantErr: errHelp},
		{name: "unknown command", args: []string{"admin", "dance"}, wantErr: errHelp},
		{name: "addteacher without flags", args: []string{"admin", "addteacher"}, wantErr: errHelp},
		{name: "addteacher without username or email", args: []string{"admin", "addteacher", "-name", "Jo"}, wantErr: errHelp},
		{name: "resetpassword without username", args: []string{"admin", "resetpassword"}, wantErr: errHelp},
		{name: "resetpassword unknown user", args: []string{"admin", "resetpassword", "-username", "nobody"}, wantErr: user.ErrNotFound},
		{name: "seed empty dir", args: []string{"admin", "seed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := newTestCLI(t)
			if err := cli.run(tt.args); err != tt.wantErr {
				t.Errorf("run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_run_emptyPassword(t *testing.T) {
	mockPassword(t, "")
	cli := newTestCLI(t)

	err := cli.run([]string{"admin", "resetpassword", "-username", "nobody"})
	if err != errHelp {
		t.Errorf("run() error = %v, wantErr %v", err, errHelp)
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	mockPassword(t, "Xk9$wqPz")
	cli := newTestCLI(t)

	if err := cli.run([]string{"admin", "addteacher", "-name", "Jo Teacher", "-email", "jo@test.cd"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	usr, err := cli.usrSvc.GetByEmail("jo@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if !usr.IsTeacher() || !usr.IsActive {
		t.Errorf("addteacher created %+v, want an active teacher", usr)
	}

	// running again upserts the same account instead of failing uniqueness
	if err = cli.run([]string{"admin", "addteacher", "-name", "Jo T.", "-email", "jo@test.cd"}); err != nil {
		t.Fatalf("run() repeat error = %v", err)
	}
	if got := cli.usrSvc.Teachers(); len(got) != 1 {
		t.Fatalf("Teachers() = %d, want 1", len(got))
	}
	if got, _ := cli.usrSvc.GetByEmail("jo@test.cd"); got.Name != "Jo T." {
		t.Errorf("Name = %q, want updated to %q", got.Name, "Jo T.")
	}
}

func Test_commandLine_addTeacher_promotesExistingUser(t *testing.T) {
	mockPassword(t, "Xk9$wqPz")
	cli := newTestCLI(t)
	_, err := cli.usrSvc.Create(user.NewUser{
		Name: "Amani", Email: "amani@test.cd", Password: "Old!Pwd99", Roles: []string{user.RoleStudent},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err = cli.run([]string{"admin", "addteacher", "-name", "Amani", "-email", "amani@test.cd"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	usr, _ := cli.usrSvc.GetByEmail("amani@test.cd")
	if !usr.IsTeacher() || !usr.IsStudent() {
		t.Errorf("Roles = %v, want teacher role added alongside student", usr.Roles)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	mockPassword(t, "N3w!Pass")
	cli := newTestCLI(t)
	_, err := cli.usrSvc.Create(user.NewUser{
		Name: "Jo", Username: "joteach", Password: "Old!Pwd99",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err = cli.run([]string{"admin", "resetpassword", "-username", "joteach"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	usr, _ := cli.usrSvc.GetByUsername("joteach")
	if err = usr.CheckPassword("N3w!Pass"); err != nil {
		t.Errorf("CheckPassword(new) error = %v", err)
	}
	if err = usr.CheckPassword("Old!Pwd99"); err == nil {
		t.Error("CheckPassword(old) still passes after reset")
	}
}
