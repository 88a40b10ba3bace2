package mcp

import (
	"crypto/subtle"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const SecretHeader = "X-MCP-Secret"

// NewServer builds an MCP server with the workout stats tools.
// Mounted on the backend at /mcp and run over stdio by cmd/tralog_mcp.
func NewServer(statsSvc statsService) *mcp.Server {
	h := NewHandler(NewContextService(statsSvc))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "tralog-stats",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weekly_stats",
		Description: "Returns the workout stats of one Monday-based week and of the week before it: workout count, training days, distinct exercises, volume per exercise type (weight kg*reps, bodyweight reps, time seconds, distance) and warmup/cooldown totals. Args: user_id; optional week (any day of the week, YYYY-MM-DD).",
	}, h.GetWeeklyStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Returns the dashboard of a user: total workouts, last workout date, this and last week stats, volume change between them and a weekly trend. Arg: user_id.",
	}, h.GetDashboardTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_workouts",
		Description: "Returns the workouts of a user done within the given date range, newest first. Args: user_id, from_date, to_date (YYYY-MM-DD, both included).",
	}, h.ListWorkoutsTool())

	return s
}

// NewHTTPHandler serves the MCP server over streamable HTTP. Requests must
// carry the shared secret in the X-MCP-Secret header.
func NewHTTPHandler(server *mcp.Server, secret string) http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	guarded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		given := r.Header.Get(SecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		streamable.ServeHTTP(w, r)
	})

	return otelhttp.NewHandler(guarded, "mcp")
}
