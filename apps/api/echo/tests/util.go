package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
	emailsvc "github.com/trezcool/maendeleo/services/email"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/database/inmem"
	"github.com/trezcool/maendeleo/tests"
)

var (
	conf = testutil.NewConfig()

	subjRepo  curriculum.Repository
	stdRepo   student.Repository
	notifRepo notification.Repository

	currSvc  curriculum.Service
	notifSvc notification.Service
	stdSvc   student.Service

	teacherIdentity = core.Identity{ID: "teacher-1", Name: "Mr. Banza", Email: "banza@test.cd", IsTeacher: true}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) Server {
	t.Helper()

	// set up DB & repos
	db, err := inmem.Open()
	if err != nil {
		t.Fatalf("inmem.Open() failed: %v", err)
	}
	subjRepo = inmem.NewSubjectRepository(db)
	stdRepo = inmem.NewStudentRepository(db)
	notifRepo = inmem.NewNotificationRepository(db)

	// set up validation
	enLocale := en.New()
	uniTranslator := ut.New(enLocale, enLocale)
	translator, _ := uniTranslator.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up services
	logger := logsvc.NewConsoleLogger(log.New(io.Discard, "", 0))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	currSvc = curriculum.NewService(subjRepo)
	notifSvc = notification.NewService(notifRepo)
	stdSvc = student.NewService(stdRepo, currSvc, notifSvc, mailSvc, validate, logger)

	// set up server
	return NewServer(
		&Options{
			Conf:            conf,
			Logger:          logger,
			DisableReqLogs:  true,
			Validate:        validate,
			Translator:      translator,
			CurriculumSvc:   currSvc,
			StudentSvc:      stdSvc,
			NotificationSvc: notifSvc,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
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
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, id core.Identity) string {
	claims := IdentityClaims(id, conf)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func studentIdentity(std student.Student) core.Identity {
	return core.Identity{ID: std.ID, Name: std.Name, Email: std.Email, IsStudent: true}
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
