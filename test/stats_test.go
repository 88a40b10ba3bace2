//go:build integration_test || all_tests

package test

import (
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
)

func (s *IntegrationTestSuite) TestWorkoutsAndStats() {
	t := s.T()
	token := s.newUser()
	now := time.Now()

	resp := s.do("POST", "/workouts", token, map[string]any{
		"date": now.Format(time.RFC3339),
		"exercises": []map[string]any{
			{"name": "Bench Press", "menuType": "weight", "sets": []map[string]any{{"weight": 60, "reps": 10}, {"weight": 60, "reps": 8}}},
			{"name": "ウォームアップ", "menuType": "time", "sets": []map[string]any{{"duration": 300}}},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
	var added records.Workout
	require.NoError(t, resp.decode(&added))
	require.NotEmpty(t, added.ID)

	// legacy shapes, imported as they are
	resp = s.do("POST", "/workouts/import", token, []map[string]any{
		{"id": "legacy-1", "date": map[string]any{"seconds": now.AddDate(0, 0, -7).Unix(), "nanoseconds": 0}, "exercises": []map[string]any{
			{"name": "Squat", "type": "weight", "sets": []map[string]any{{"weight": "100", "reps": "5"}}},
		}},
		{"id": "legacy-2", "date": "not a date", "exercises": []map[string]any{
			{"name": "Push-up", "sets": []map[string]any{{"reps": 20}}},
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp = s.do("GET", "/stats/weekly", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var report stats.WeeklyReport
	require.NoError(t, resp.decode(&report))
	assert.Equal(t, 2, report.ThisWeek.Count)
	assert.Equal(t, 1080.0, report.ThisWeek.VolumeByType.Weight)
	assert.Equal(t, 20.0, report.ThisWeek.VolumeByType.Bodyweight)
	assert.Equal(t, 5, report.ThisWeek.WarmupTotalMinutes)
	assert.Equal(t, 1, report.ThisWeek.DataQuality.FallbackDates)
	assert.Equal(t, 1, report.LastWeek.Count)
	assert.Equal(t, 500.0, report.LastWeek.VolumeByType.Weight)

	resp = s.do("GET", "/stats/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	var dashboard stats.Dashboard
	require.NoError(t, resp.decode(&dashboard))
	assert.Equal(t, 3, dashboard.TotalWorkouts)
	assert.Len(t, dashboard.Trend, 4)

	resp = s.do("DELETE", "/workouts/"+added.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	resp = s.do("GET", "/workouts/"+added.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// another user sees nothing of it
	other := s.newUser()
	resp = s.do("GET", "/stats/weekly", other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report = stats.WeeklyReport{}
	require.NoError(t, resp.decode(&report))
	assert.Equal(t, 0, report.ThisWeek.Count)
}

func (s *IntegrationTestSuite) TestMenus() {
	t := s.T()
	token := s.newUser()

	var ids []string
	for _, m := range []map[string]string{
		{"name": "Bench Press", "type": "weight"},
		{"name": "Plank", "type": "time"},
		{"name": "Run", "type": "distance"},
	} {
		resp := s.do("POST", "/menus", token, m)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		var added struct {
			ID string `json:"id"`
		}
		require.NoError(t, resp.decode(&added))
		ids = append(ids, added.ID)
	}

	resp := s.do("POST", "/menus", token, map[string]string{"name": "Yoga", "type": "cardio"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do("PUT", "/menus/order", token, map[string]any{"ids": []string{ids[2], ids[0], ids[1]}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

	resp = s.do("GET", "/menus", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []struct {
		ID    string `json:"id"`
		Order int    `json:"order"`
	}
	require.NoError(t, resp.decode(&listed))
	require.Len(t, listed, 3)
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, []string{listed[0].ID, listed[1].ID, listed[2].ID})
}
