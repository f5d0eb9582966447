package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradeBody(t *testing.T, id, comments string, grades map[string]interface{}) []byte {
	return marchallObj(t, map[string]interface{}{
		"evaluationId": id,
		"grades":       grades,
		"comments":     comments,
	})
}

func Test_gradingApi(t *testing.T) {
	env := setup(t)
	s1Token := getToken(t, student1)
	tToken := getToken(t, teacher)
	id := student1.ID + "_" + semester + "_" + academicYear
	env.addStudent(t, student1, "2021001", "CNTT2021A")

	// self-assessed 87, submitted
	rec := env.do(http.MethodPost, "/api/evaluations", s1Token, upsertBody(t, "", "submitted", 18, 22, 17, 21, 9))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 87, decode(t, rec)["totalSelfScore"])

	tests := []httpTest{
		{
			name:     "students cannot list",
			method:   http.MethodGet,
			path:     "/api/grading",
			token:    s1Token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "students cannot grade",
			method:   http.MethodPost,
			path:     "/api/grading",
			body:     gradeBody(t, id, "", map[string]interface{}{"section1": 20}),
			token:    s1Token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "grade above the section maximum",
			method:   http.MethodPost,
			path:     "/api/grading",
			body:     gradeBody(t, id, "", map[string]interface{}{"section1": 17, "section2": 20, "section3": 16, "section4": 20, "section5": 11}),
			token:    tToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"invalid data","fields":{"section5":"score must be between 0 and the section maximum"}}`),
		},
		{
			name:     "missing grades",
			method:   http.MethodPost,
			path:     "/api/grading",
			body:     gradeBody(t, id, "", map[string]interface{}{"section1": 17, "section2": 20, "section3": 16, "section4": 20}),
			token:    tToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"every section must have a teacher score","fields":{"section5":"every section must have a teacher score"}}`),
		},
		{
			name:     "unknown evaluation",
			method:   http.MethodPost,
			path:     "/api/grading",
			body:     gradeBody(t, "nope", "", map[string]interface{}{"section1": 17}),
			token:    tToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "evaluation not found"}),
		},
	}
	runHTTPTests(t, env, tests)

	t.Run("submitted are listed with roster data", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/grading?classId=CNTT2021A", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)
		require.EqualValues(t, 1, data["total"])
		ev := data["evaluations"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, student1.Name, ev["studentName"])
		assert.Equal(t, "2021001", ev["studentId"])
		assert.EqualValues(t, 87, ev["total"])

		rec = env.do(http.MethodGet, "/api/grading?classId=KT2021B", tToken)
		assert.EqualValues(t, 0, decode(t, rec)["total"])
	})

	t.Run("graded", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/grading", tToken, gradeBody(t, id, "Tot", map[string]interface{}{
			"section1": 17, "section2": 20, "section3": 16, "section4": 20, "section5": 9,
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		ev := decode(t, rec)["evaluation"].(map[string]interface{})
		assert.Equal(t, "graded", ev["status"])
		assert.EqualValues(t, 82, ev["finalScore"])
		assert.EqualValues(t, 87, ev["totalSelfScore"])
		assert.Equal(t, "Tot", ev["teacherComments"])
	})

	t.Run("zero keeps its meaning on regrade", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/grading", tToken, gradeBody(t, id, "", map[string]interface{}{"section5": 0}))
		require.Equal(t, http.StatusOK, rec.Code)
		ev := decode(t, rec)["evaluation"].(map[string]interface{})
		assert.EqualValues(t, 73, ev["finalScore"])
	})

	t.Run("graded evaluations are locked for students", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/evaluations", s1Token, upsertBody(t, "", "", 18, 22, 17, 21, 9))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student notified and mailed", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/notifications", s1Token)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)
		assert.EqualValues(t, 2, data["total"])
		assert.EqualValues(t, 2, data["unreadCount"])

		sent := env.mailSvc.Sent()
		require.Len(t, sent, 2)
		assert.Equal(t, student1.Email, sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "82")
	})
}
