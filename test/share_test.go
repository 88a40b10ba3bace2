//go:build integration_test || all_tests

package test

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponta-ta-taro/tralog4/internal/share"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
)

func (s *IntegrationTestSuite) TestShareLinkViewer() {
	t := s.T()
	owner := s.newUser()

	resp := s.do("POST", "/workouts", owner, map[string]any{
		"exercises": []map[string]any{{"name": "Deadlift", "menuType": "weight", "sets": []map[string]any{{"weight": 120, "reps": 5}}}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp = s.do("POST", "/share", owner, share.CreateRequest{Password: "gains", Label: "coach", ExpiresInDays: 7})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	var link share.Link
	require.NoError(t, resp.decode(&link))
	require.NotNil(t, link.ExpiresAt)

	resp = s.do("GET", "/share", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var links []share.Link
	require.NoError(t, resp.decode(&links))
	require.Len(t, links, 1)
	assert.Equal(t, link.Token, links[0].Token)

	resp = s.do("POST", "/s/"+link.Token+"/access", "", map[string]string{"password": "gains"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var access share.ViewerAccess
	require.NoError(t, resp.decode(&access))

	resp = s.do("GET", "/s/"+link.Token+"/stats/weekly", access.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var report stats.WeeklyReport
	require.NoError(t, resp.decode(&report))
	assert.Equal(t, 1, report.ThisWeek.Count)
	assert.Equal(t, 600.0, report.ThisWeek.VolumeByType.Weight)

	// viewers only read
	resp = s.do("DELETE", "/s/"+link.Token+"/workouts", access.Token, nil)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	resp = s.do("DELETE", "/share/"+link.Token, owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	resp = s.do("GET", "/s/"+link.Token+"/stats/weekly", access.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestShareAccessRateLimited() {
	t := s.T()
	owner := s.newUser()

	resp := s.do("POST", "/share", owner, share.CreateRequest{Password: "gains"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	var link share.Link
	require.NoError(t, resp.decode(&link))

	// the test config allows 3 attempts per minute and link
	for i := 0; i < 3; i++ {
		resp = s.do("POST", "/s/"+link.Token+"/access", "", map[string]string{"password": "guess"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp = s.do("POST", "/s/"+link.Token+"/access", "", map[string]string{"password": "gains"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
