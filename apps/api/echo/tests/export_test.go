package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_exportApi(t *testing.T) {
	env := setup(t)
	s1Token := getToken(t, student1)
	s2Token := getToken(t, student2)
	tToken := getToken(t, teacher)
	id := student1.ID + "_" + semester + "_" + academicYear
	env.addStudent(t, student1, "2021001", "")

	rec := env.do(http.MethodPost, "/api/evaluations", s1Token, upsertBody(t, "", "submitted", 18, 22, 17, 21, 9))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodPost, "/api/grading", tToken, gradeBody(t, id, "", map[string]interface{}{
		"section1": 17, "section2": 20, "section3": 16, "section4": 20, "section5": 9,
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []httpTest{
		{
			name:     "students cannot export reports",
			method:   http.MethodGet,
			path:     "/api/export/csv",
			token:    s1Token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "pdf without id",
			method:   http.MethodGet,
			path:     "/api/export/pdf",
			token:    tToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"missing evaluation ID","fields":{"evaluationId":"this field is required"}}`),
		},
		{
			name:     "someone else's pdf",
			method:   http.MethodGet,
			path:     "/api/export/pdf?id=" + id,
			token:    s2Token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "custom csv without data",
			method:   http.MethodPost,
			path:     "/api/export/csv",
			body:     []byte(`{"filename":"x"}`),
			token:    tToken,
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, env, tests)

	t.Run("detailed csv", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/export/csv?semester=HK1%202023-2024", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "\ufeff"))
		assert.Contains(t, body, "Nguyen Van A")
		assert.Contains(t, body, "2021001")
		assert.Contains(t, body, "82")

		rec = env.do(http.MethodGet, "/api/export/csv?semester=HK2", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Nguyen Van A")
	})

	t.Run("summary csv", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/export/csv?format=summary", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Nguyen Van A")
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/export/csv?format=xlsx", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
	})

	t.Run("custom csv", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/export/csv", tToken, []byte(`{"data":[["Ho ten","Ghi chu"],["A","noi \"hay\""],[null,1]],"filename":"bao cao"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "\ufeff\"Ho ten\",\"Ghi chu\"\n\"A\",\"noi \"\"hay\"\"\"\n\"\",\"1\"", rec.Body.String())
	})

	t.Run("pdf download", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/export/pdf?id="+id, s1Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	})

	t.Run("pdf generation", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/export/pdf", s1Token, marchallObj(t, map[string]string{"evaluationId": id}))
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)
		assert.Equal(t, "/api/export/pdf?id="+id, data["downloadUrl"])
		pdf := data["pdf"].(map[string]interface{})
		assert.Equal(t, "phieu-danh-gia-"+id+".pdf", pdf["filename"])
		assert.Greater(t, pdf["size"].(float64), float64(0))
	})
}
