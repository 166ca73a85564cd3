package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/maendeleo/tests"
)

func Test_notificationApi_query(t *testing.T) {
	app := setup(t)

	std := testutil.CreateStudent(t, stdRepo, "Jane Mwangi", "jane@test.cd")
	other := testutil.CreateStudent(t, stdRepo, "Amani", "amani@test.cd")

	now := time.Now().UTC()
	n1 := testutil.CreateNotification(t, notifRepo, "jane's first", std.ID, "proj-1", now.Add(-time.Hour))
	n2 := testutil.CreateNotification(t, notifRepo, "amani's", other.ID, "proj-2", now.Add(-30*time.Minute))
	n3 := testutil.CreateNotification(t, notifRepo, "jane's second", std.ID, "proj-3", now)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: "/v1/notifications", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Teachers see the whole feed, newest first", method: http.MethodGet, path: "/v1/notifications",
			token: getToken(t, teacherIdentity), wantCode: http.StatusOK, wantData: marchallList(t, n3, n2, n1),
		},
		{
			name: "Students only see their own", method: http.MethodGet, path: "/v1/notifications",
			token: getToken(t, studentIdentity(std)), wantCode: http.StatusOK, wantData: marchallList(t, n3, n1),
		},
		{
			name: "Students cannot widen the filter", method: http.MethodGet, path: "/v1/notifications?student_id=" + other.ID,
			token: getToken(t, studentIdentity(std)), wantCode: http.StatusOK, wantData: marchallList(t, n3, n1),
		},
		{
			name: "Filter by status", method: http.MethodGet, path: "/v1/notifications?status=pending",
			token: getToken(t, teacherIdentity), wantCode: http.StatusOK, wantData: marchallList(t, n3, n2, n1),
		},
		{
			name: "Filter by status (none)", method: http.MethodGet, path: "/v1/notifications?status=approved",
			token: getToken(t, teacherIdentity), wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
		{
			name: "Filter by student", method: http.MethodGet, path: "/v1/notifications?student_id=" + other.ID,
			token: getToken(t, teacherIdentity), wantCode: http.StatusOK, wantData: marchallList(t, n2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_notificationApi_readTracking(t *testing.T) {
	app := setup(t)

	std := testutil.CreateStudent(t, stdRepo, "Jane Mwangi", "jane@test.cd")
	n1 := testutil.CreateNotification(t, notifRepo, "one", std.ID, "proj-1")
	testutil.CreateNotification(t, notifRepo, "two", std.ID, "proj-2")

	token := getToken(t, studentIdentity(std))

	req, rec := newAuthRequest(http.MethodGet, "/v1/notifications/unread-count", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{"count":2}`)}, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/notifications/"+n1.ID+"/read", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: code = %v; body = %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications/unread-count", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{"count":1}`)}, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/notifications/nope/read", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "notification not found"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodPut, "/v1/notifications/mark-all-read", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark all read: code = %v; want %v", rec.Code, http.StatusNoContent)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications/unread-count", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`{"count":0}`)}, rec)
}

func Test_notificationApi_destroyAll(t *testing.T) {
	app := setup(t)

	std := testutil.CreateStudent(t, stdRepo, "Jane Mwangi", "jane@test.cd")
	testutil.CreateNotification(t, notifRepo, "one", std.ID, "proj-1")

	// clearing the log is a teacher call
	req, rec := newAuthRequest(http.MethodDelete, "/v1/notifications", getToken(t, studentIdentity(std)))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/notifications", getToken(t, teacherIdentity))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("destroy all: code = %v; want %v", rec.Code, http.StatusNoContent)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/notifications", getToken(t, teacherIdentity))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
}
