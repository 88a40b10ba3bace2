//go:build integration_test || all_tests

package test

import (
	"net/http"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestSignupLoginLogout() {
	t := s.T()

	creds := map[string]string{
		"email":    gofakeit.Email(),
		"password": "correct-horse",
	}

	resp := s.do("POST", "/a/signup", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotContains(t, string(resp.Body), "correct-horse")

	resp = s.do("POST", "/a/signup", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do("POST", "/a/login", "", map[string]string{"email": creds["email"], "password": "wrong-horse"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do("POST", "/a/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, resp.decode(&loginResp))

	resp = s.do("GET", "/workouts", loginResp.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do("GET", "/a/logout", loginResp.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "logged-out", string(resp.Body))

	resp = s.do("GET", "/workouts", loginResp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestPublicEndpoints() {
	t := s.T()

	resp := s.do("GET", "/version", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "test-version-info", string(resp.Body))

	resp = s.do("GET", "/stats/weekly", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
