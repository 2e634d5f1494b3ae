package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/store"
)

func newValidator() (*validator.Validate, *Service) {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator, "testdata/no-such-file.txt.gz")
	return validate, NewService(store.New(store.Options{}))
}

func Test_validatePassword(t *testing.T) {
	validate, svc := newValidator()

	newUser := func(pwd string) *NewUser {
		return &NewUser{
			Name:            "Amani Bahati",
			Username:        "amani1",
			Email:           "amani@test.cd",
			Password:        pwd,
			PasswordConfirm: pwd,
		}
	}

	tests := []struct {
		name    string
		pwd     string
		wantErr bool
	}{
		{name: "too short", pwd: "Ab1!", wantErr: true},
		{name: "whitespace", pwd: "Abcd 123!", wantErr: true},
		{name: "all numeric", pwd: "12345678", wantErr: true},
		{name: "no digit", pwd: "Abcdefg!", wantErr: true},
		{name: "no upper", pwd: "abcdefg1!", wantErr: true},
		{name: "no special", pwd: "Abcdefg1", wantErr: true},
		{name: "similar to email", pwd: "amani1@Test.cd", wantErr: true},
		{name: "ok", pwd: "Xk9$wqPz", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newUser(tt.pwd).Validate(validate, svc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_usernameOrEmailRequired(t *testing.T) {
	validate, svc := newValidator()

	nu := &NewUser{Name: "Amani", Password: "Xk9$wqPz", PasswordConfirm: "Xk9$wqPz"}
	if err := nu.Validate(validate, svc); err == nil {
		t.Error("Validate() without username and email passed, want error")
	}

	nu = &NewUser{Name: "Amani", Email: "amani@test.cd", Password: "Xk9$wqPz", PasswordConfirm: "Xk9$wqPz"}
	if err := nu.Validate(validate, svc); err != nil {
		t.Errorf("Validate() with email only error = %v", err)
	}
}

func Test_allRolesValidation(t *testing.T) {
	validate, svc := newValidator()

	newUser := func(roles []string) *NewUser {
		return &NewUser{
			Name:            "Amani",
			Email:           "amani@test.cd",
			Password:        "Xk9$wqPz",
			PasswordConfirm: "Xk9$wqPz",
			Roles:           roles,
		}
	}

	tests := []struct {
		name    string
		roles   []string
		wantErr bool
	}{
		{name: "no roles", roles: nil},
		{name: "known role", roles: []string{RoleTeacher}},
		{name: "all known roles", roles: AllRoles},
		{name: "unknown role", roles: []string{"king:"}, wantErr: true},
		{name: "mixed", roles: []string{RoleTeacher, "lol"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newUser(tt.roles).Validate(validate, svc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_passwordConfirmMustMatch(t *testing.T) {
	validate, svc := newValidator()

	nu := &NewUser{Name: "Amani", Email: "amani@test.cd", Password: "Xk9$wqPz", PasswordConfirm: "different"}
	if err := nu.Validate(validate, svc); err == nil {
		t.Error("Validate() with mismatched confirmation passed, want error")
	}
}
