package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/billing"
	"github.com/mkuu/darasa/core/class"
	"github.com/mkuu/darasa/core/course"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/notification"
	"github.com/mkuu/darasa/core/schedule"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/topic"
	"github.com/mkuu/darasa/core/user"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type mailMock struct{}

func (mailMock) SendMessages(...*core.EmailMessage) error { return nil }

type testApp struct {
	Server
	usrSvc *user.Service
	auth   authenticator
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Darasa",
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Billing:   core.BillingConfig{Currency: "EUR", DefaultHourlyRate: 50},
	}

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator, "testdata/no-such-file.txt.gz")

	st := store.New(store.Options{})
	logger := nopLogger{}
	notifSvc := notification.NewService(st, logger)
	usrSvc := user.NewService(st)
	topicSvc := topic.NewService(st, notifSvc)
	moduleSvc := module.NewService(st, notifSvc)
	lessonSvc := lesson.NewService(st, notifSvc, moduleSvc)
	courseSvc := course.NewService(st, notifSvc)
	classSvc := class.NewService(st, notifSvc)
	enrollSvc := enrollment.NewService(st, notifSvc)
	schedSvc := schedule.NewService(st, notifSvc, logger)
	billSvc := billing.NewService(st, notifSvc, mailMock{}, conf.Billing)

	app := NewServer(&Options{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		DisableReqLogs:  true,
		SignalShutdown:  func() {},
		UserSvc:         usrSvc,
		CourseSvc:       courseSvc,
		ModuleSvc:       moduleSvc,
		LessonSvc:       lessonSvc,
		TopicSvc:        topicSvc,
		ClassSvc:        classSvc,
		EnrollmentSvc:   enrollSvc,
		ScheduleSvc:     schedSvc,
		NotificationSvc: notifSvc,
		BillingSvc:      billSvc,
	})
	return &testApp{
		Server: app,
		usrSvc: usrSvc,
		auth:   authenticator{conf: conf, svc: usrSvc},
	}
}

func (app *testApp) createUser(t *testing.T, name, uname, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := app.usrSvc.Create(user.NewUser{Name: name, Username: uname, Password: pwd, Roles: roles})
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := app.auth.generateToken(app.auth.getUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func Test_home(t *testing.T) {
	app := newTestApp(t)
	req, rec := newAuthRequest(http.MethodGet, "/", "")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %v, want %v", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "Welcome to Darasa API!" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func Test_userApi_login(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Jo Teacher", "joteach", "Xk9$wqPz", []string{user.RoleTeacher})

	lazy := app.createUser(t, "Lazy", "lazyone", "Xk9$wqPz", nil)
	inactive := false
	if _, err := app.usrSvc.Update(lazy.ID, user.UpdateUser{
		Name: lazy.Name, Username: lazy.Username, Email: lazy.Email, IsActive: &inactive,
	}); err != nil {
		t.Fatal(err)
	}

	login := func(uname, pwd string) []byte {
		return marchallObj(t, LoginRequest{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{name: "empty body", wantCode: http.StatusBadRequest},
		{name: "unknown user", body: login("nobody", "Xk9$wqPz"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"authentication failed"}`)},
		{name: "wrong password", body: login("joteach", "wrong"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"authentication failed"}`)},
		{name: "deactivated account", body: login("lazyone", "Xk9$wqPz"), wantCode: http.StatusForbidden,
			wantData: []byte(`{"error":"account deactivated"}`)},
		{name: "ok", body: login("JoTeach", "Xk9$wqPz"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/login", "", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name != "ok" || rec.Code != http.StatusOK {
				return
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling LoginResponse: %v", err)
			}
			if resp.Token == "" {
				t.Fatal("login returned an empty token")
			}

			// the token authenticates follow-up requests
			req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.Token)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET /users/me code = %v; body %v", rec.Code, rec.Body.String())
			}
			var me user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
				t.Fatal(err)
			}
			if me.ID != usr.ID {
				t.Errorf("me.ID = %v, want %v", me.ID, usr.ID)
			}
		})
	}
}

func Test_authAndRoleGuards(t *testing.T) {
	app := newTestApp(t)
	teacher := app.createUser(t, "Jo Teacher", "joteach", "Xk9$wqPz", []string{user.RoleTeacher})
	student := app.createUser(t, "Amani", "amani1", "Xk9$wqPz", []string{user.RoleStudent})
	admin := app.createUser(t, "Root", "rooter", "Xk9$wqPz", []string{user.RoleAdminOwner})

	tests := []httpTest{
		{name: "missing token", method: http.MethodGet, path: "/v1/courses",
			wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"missing or malformed jwt"}`)},
		{name: "student on teacher endpoint", method: http.MethodGet, path: "/v1/courses", token: app.getToken(t, student),
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"permission denied"}`)},
		{name: "teacher on teacher endpoint", method: http.MethodGet, path: "/v1/courses", token: app.getToken(t, teacher),
			wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "admin on teacher endpoint", method: http.MethodGet, path: "/v1/courses", token: app.getToken(t, admin),
			wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "teacher on admin endpoint", method: http.MethodGet, path: "/v1/users", token: app.getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"permission denied"}`)},
		{name: "admin on admin endpoint", method: http.MethodGet, path: "/v1/users/roles", token: app.getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_crud(t *testing.T) {
	app := newTestApp(t)
	teacher := app.createUser(t, "Jo Teacher", "joteach", "Xk9$wqPz", []string{user.RoleTeacher})
	other := app.createUser(t, "Bob Teacher", "bobteach", "Xk9$wqPz", []string{user.RoleTeacher})
	token := app.getToken(t, teacher)
	otherToken := app.getToken(t, other)

	do := func(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
		req, rec := newAuthRequest(method, path, token, data...)
		app.ServeHTTP(rec, req)
		return rec
	}

	// create
	rec := do(http.MethodPost, "/v1/courses", token, marchallObj(t, course.NewCourse{Name: "Web Development", Category: "IT"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /courses code = %v; body %v", rec.Code, rec.Body.String())
	}
	var crs course.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
		t.Fatal(err)
	}
	if crs.Slug != "course-web-development" {
		t.Errorf("Slug = %q, want %q", crs.Slug, "course-web-development")
	}

	// duplicate name is a field error
	rec = do(http.MethodPost, "/v1/courses", otherToken, marchallObj(t, course.NewCourse{Name: "Web Development", Category: "IT"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST duplicate code = %v; body %v", rec.Code, rec.Body.String())
	}

	// retrieve by slug
	rec = do(http.MethodGet, "/v1/courses/slug/course-web-development", token)
	if rec.Code != http.StatusOK {
		t.Errorf("GET by slug code = %v", rec.Code)
	}

	// update is creator+owner gated
	rec = do(http.MethodPut, "/v1/courses/"+crs.ID, otherToken, marchallObj(t, course.UpdateCourse{Name: "Web Dev"}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("PUT by other teacher code = %v, want %v", rec.Code, http.StatusForbidden)
	}
	rec = do(http.MethodPut, "/v1/courses/"+crs.ID, token, marchallObj(t, course.UpdateCourse{Name: "Web Dev"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT code = %v; body %v", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
		t.Fatal(err)
	}
	if crs.Name != "Web Dev" {
		t.Errorf("Name = %q, want %q", crs.Name, "Web Dev")
	}

	// delete, then retrieval 404s
	rec = do(http.MethodDelete, "/v1/courses/"+crs.ID, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE code = %v; body %v", rec.Code, rec.Body.String())
	}
	rec = do(http.MethodGet, "/v1/courses/"+crs.ID, token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete code = %v, want %v", rec.Code, http.StatusNotFound)
	}
}

func Test_userApi_register(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "Root", "rooter", "Xk9$wqPz", []string{user.RoleAdmin})
	token := app.getToken(t, admin)

	body := marchallObj(t, user.NewUser{
		Name:            "Jo Teacher",
		Username:        "joteach",
		Password:        "Xk9$wqPz",
		PasswordConfirm: "Xk9$wqPz",
		Roles:           []string{user.RoleTeacher},
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /users/register code = %v; body %v", rec.Code, rec.Body.String())
	}

	// roles above the acting user's own are rejected
	body = marchallObj(t, user.NewUser{
		Name:            "Boss",
		Username:        "bigboss",
		Password:        "Xk9$wqPz",
		PasswordConfirm: "Xk9$wqPz",
		Roles:           []string{user.RoleAdminOwner},
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/users/register", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /users/register with higher role code = %v, want %v", rec.Code, http.StatusBadRequest)
	}
}
