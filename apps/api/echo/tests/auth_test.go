package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/womanacademy/renluyen/core"
)

func Test_home(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to "+conf.AppName+" API!", rec.Body.String())
}

func Test_authentication(t *testing.T) {
	env := setup(t)

	unknownRole := getToken(t, core.Actor{ID: "x1", Role: "admin"})
	otherSecret := func() string {
		c := *conf
		c.SecretKey = "not the secret"
		tok, err := generateTokenWith(&c, student1)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}()

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/api/evaluations",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "bad signature",
			method:   http.MethodGet,
			path:     "/api/evaluations",
			token:    otherSecret,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown role",
			method:   http.MethodGet,
			path:     "/api/evaluations",
			token:    unknownRole,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "student on teacher endpoint",
			method:   http.MethodGet,
			path:     "/api/students",
			token:    getToken(t, student1),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "teacher",
			method:   http.MethodGet,
			path:     "/api/students",
			token:    getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"students":[],"total":0}`),
		},
	}
	runHTTPTests(t, env, tests)
}
