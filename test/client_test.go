//go:build integration_test || all_tests

package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	StatusCode int
	Body       []byte
}

func (r apiResponse) decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// do sends a JSON request to the test server, with the bearer token when given.
func (s *IntegrationTestSuite) do(method, path, token string, body any) apiResponse {
	t := s.T()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, serverEndpoint+path, payload)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return apiResponse{StatusCode: resp.StatusCode, Body: respBytes}
}

// newUser signs up a fresh user and returns its session token.
func (s *IntegrationTestSuite) newUser() string {
	t := s.T()

	creds := map[string]string{
		"email":    gofakeit.Email(),
		"password": gofakeit.Password(true, true, true, false, false, 12),
	}

	resp := s.do("POST", "/a/signup", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp = s.do("POST", "/a/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, resp.decode(&loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}
