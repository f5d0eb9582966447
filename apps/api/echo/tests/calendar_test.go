package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_calendarApi(t *testing.T) {
	env := setup(t)
	s1Token := getToken(t, student1)
	s2Token := getToken(t, student2)
	tToken := getToken(t, teacher)

	create := func(t *testing.T, token string, body map[string]interface{}) map[string]interface{} {
		rec := env.do(http.MethodPost, "/api/calendar", token, marchallObj(t, body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode(t, rec)["event"].(map[string]interface{})
	}

	tests := []httpTest{
		{
			name:     "missing title",
			method:   http.MethodPost,
			path:     "/api/calendar",
			body:     marchallObj(t, map[string]string{"startDate": "2024-03-01"}),
			token:    s1Token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"invalid data","fields":{"title":"this field is required"}}`),
		},
		{
			name:     "bad time",
			method:   http.MethodPost,
			path:     "/api/calendar",
			body:     marchallObj(t, map[string]string{"title": "Hop lop", "startDate": "2024-03-01", "startTime": "25:00"}),
			token:    s1Token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"invalid data","fields":{"startTime":"time must be formatted as HH:MM"}}`),
		},
		{
			name:     "delete without id",
			method:   http.MethodDelete,
			path:     "/api/calendar",
			token:    s1Token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"success":false,"error":"event ID required","fields":{"id":"this field is required"}}`),
		},
	}
	runHTTPTests(t, env, tests)

	personal := create(t, s1Token, map[string]interface{}{"title": "On thi", "startDate": "2024-03-05", "startTime": "08:00"})
	shared := create(t, tToken, map[string]interface{}{"title": "Sinh hoat lop", "startDate": "2024-03-02", "type": "shared"})
	meeting := create(t, tToken, map[string]interface{}{"title": "Gap GVCN", "startDate": "2024-04-10", "type": "meeting", "attendees": []string{student2.ID}})

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, "personal", personal["type"])
		assert.Equal(t, "2024-03-05", personal["endDate"])
		assert.Equal(t, student1.ID, personal["createdBy"])
		assert.Equal(t, []interface{}{}, personal["attendees"])
	})

	titles := func(rec map[string]interface{}) []string {
		var out []string
		for _, e := range rec["events"].([]interface{}) {
			out = append(out, e.(map[string]interface{})["title"].(string))
		}
		return out
	}

	t.Run("visibility", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/calendar", s1Token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Sinh hoat lop", "On thi"}, titles(decode(t, rec)))

		rec = env.do(http.MethodGet, "/api/calendar?userId="+student1.ID, s2Token)
		assert.Equal(t, []string{"Sinh hoat lop", "Gap GVCN"}, titles(decode(t, rec)))

		rec = env.do(http.MethodGet, "/api/calendar", tToken)
		assert.Len(t, titles(decode(t, rec)), 3)
	})

	t.Run("date range", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/calendar?startDate=2024-03-01&endDate=2024-03-31", tToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Sinh hoat lop", "On thi"}, titles(decode(t, rec)))

		rec = env.do(http.MethodGet, "/api/calendar?startDate=03/01/2024&endDate=2024-03-31", tToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"id": personal["id"], "location": "Thu vien", "startTime": "09:30"})
		rec := env.do(http.MethodPut, "/api/calendar", s1Token, body)
		require.Equal(t, http.StatusOK, rec.Code)
		evt := decode(t, rec)["event"].(map[string]interface{})
		assert.Equal(t, "Thu vien", evt["location"])
		assert.Equal(t, "09:30", evt["startTime"])
		assert.Equal(t, "On thi", evt["title"])
	})

	t.Run("only the creator or a teacher can modify", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"id": shared["id"], "title": "Hacked"})
		rec := env.do(http.MethodPut, "/api/calendar", s1Token, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(http.MethodDelete, "/api/calendar?id="+meeting["id"].(string), s1Token)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.do(http.MethodDelete, "/api/calendar?id="+personal["id"].(string), tToken)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodDelete, "/api/calendar?id="+personal["id"].(string), s1Token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
