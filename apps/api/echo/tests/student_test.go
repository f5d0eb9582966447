package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_studentApi(t *testing.T) {
	env := setup(t)
	tToken := getToken(t, teacher)

	newStudent := func(name, studentID, email, classID string) []byte {
		return marchallObj(t, map[string]string{
			"userId":    "",
			"fullName":  name,
			"studentId": studentID,
			"email":     email,
			"classId":   classID,
		})
	}

	tests := []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/students",
			body:     marchallObj(t, map[string]string{"fullName": "Nguyen Van A"}),
			token:    tToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"invalid data","fields":{"studentId":"this field is required","email":"this field is required"}}`),
		},
		{
			name:     "created in the default class",
			method:   http.MethodPost,
			path:     "/api/students",
			body:     newStudent("Nguyen Van A", "2021001", "A@Test.vn", ""),
			token:    tToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate student ID",
			method:   http.MethodPost,
			path:     "/api/students",
			body:     newStudent("Nguyen Van B", "2021001", "b@test.vn", ""),
			token:    tToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"a student with this student ID already exists","fields":{"studentId":"a student with this student ID already exists"}}`),
		},
		{
			name:     "created in another class",
			method:   http.MethodPost,
			path:     "/api/students",
			body:     newStudent("Tran Thi C", "2021002", "c@test.vn", "KT2021B"),
			token:    tToken,
			wantCode: http.StatusCreated,
		},
		{
			name:     "unknown student",
			method:   http.MethodGet,
			path:     "/api/students/nope",
			token:    tToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	runHTTPTests(t, env, tests)

	var id string
	t.Run("filter by class", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/students?classId="+conf.DefaultClassID, tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)
		require.EqualValues(t, 1, data["total"])
		st := data["students"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "a@test.vn", st["email"])
		id = st["id"].(string)
	})

	t.Run("search", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/students?search=tran", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decode(t, rec)["total"])
	})

	t.Run("update", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/students/"+id, tToken, marchallObj(t, map[string]string{"phone": "0901234567"}))
		require.Equal(t, http.StatusOK, rec.Code)
		st := decode(t, rec)["student"].(map[string]interface{})
		assert.Equal(t, "0901234567", st["phone"])
		assert.Equal(t, "Nguyen Van A", st["fullName"])
	})

	t.Run("export", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/students/export?classId=KT2021B", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=")

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "\ufeff"))
		assert.Contains(t, body, "Tran Thi C")
		assert.NotContains(t, body, "Nguyen Van A")
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(http.MethodDelete, "/api/students/"+id, tToken)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodGet, "/api/students/"+id, tToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
