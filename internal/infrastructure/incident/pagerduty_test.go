package incident

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedConfig "accessgate/internal/shared/config"
	"accessgate/internal/shared/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&sharedConfig.PagerDutyConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, logger.NewLogger())
	return client, server
}

func TestLookupUserID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first matching user", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users", r.URL.Path)
			assert.Equal(t, "alice", r.URL.Query().Get("query"))
			assert.Equal(t, "Token token=test-key", r.Header.Get("Authorization"))
			w.Write([]byte(`{"users":[{"id":"PUSER1","email":"alice@example.com"},{"id":"PUSER2"}]}`))
		}))

		id, err := client.LookupUserID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "PUSER1", id)
	})

	t.Run("no match is empty without error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"users":[]}`))
		}))

		id, err := client.LookupUserID(ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("server error propagates", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.LookupUserID(ctx, "alice")
		assert.Error(t, err)
	})
}

func TestActiveIncidents(t *testing.T) {
	ctx := context.Background()

	const incidentsBody = `{"incidents":[
		{"id":"INC1","title":"payroll is down","html_url":"https://pd.example/INC1",
		 "service":{"summary":"Payroll Service"},
		 "assignments":[{"assignee":{"id":"PUSER1","summary":"Alice"}},
		                {"assignee":{"id":"PUSER2","summary":"Bob"}}]},
		{"id":"INC2","title":"unrelated outage","html_url":"https://pd.example/INC2",
		 "service":{"summary":"Other Service"},
		 "assignments":[{"assignee":{"id":"PUSER3","summary":"Carol"}}]},
		{"id":"INC3","title":"APP_AWS_SSO_PAYROLL access broken","html_url":"https://pd.example/INC3",
		 "service":{"summary":"Helpdesk"},
		 "assignments":[{"assignee":{"id":"PUSER1","summary":"Alice"}}]}
	]}`

	emails := map[string]string{
		"PUSER1": "alice@example.com",
		"PUSER2": "bob@example.com",
	}

	handler := func(failEmails bool) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/incidents":
				assert.ElementsMatch(t, []string{"acknowledged", "triggered"}, r.URL.Query()["statuses[]"])
				assert.Equal(t, []string{"PUSER1"}, r.URL.Query()["user_ids[]"])
				w.Write([]byte(incidentsBody))
			case r.URL.Path == "/users/PUSER2" && failEmails:
				w.WriteHeader(http.StatusInternalServerError)
			default:
				id := r.URL.Path[len("/users/"):]
				w.Write([]byte(`{"user":{"id":"` + id + `","email":"` + emails[id] + `"}}`))
			}
		})
	}

	t.Run("matches service summary and title case-insensitively", func(t *testing.T) {
		client, _ := newTestClient(t, handler(false))

		matches, err := client.ActiveIncidents(ctx, "PUSER1", "payroll")
		require.NoError(t, err)
		require.True(t, matches.HasMatches())
		require.Len(t, matches.Incidents, 2)
		assert.Equal(t, "INC1", matches.Incidents[0].ID)
		assert.Equal(t, "INC3", matches.Incidents[1].ID)
	})

	t.Run("deduplicates assignees and emails across incidents", func(t *testing.T) {
		client, _ := newTestClient(t, handler(false))

		matches, err := client.ActiveIncidents(ctx, "PUSER1", "PAYROLL")
		require.NoError(t, err)
		require.Len(t, matches.Assignees, 2)
		assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, matches.AssigneeEmails)
		assert.True(t, matches.HasAssigneeEmail("alice@example.com"))
		assert.False(t, matches.HasAssigneeEmail("carol@example.com"))
	})

	t.Run("assignee email failure drops the email only", func(t *testing.T) {
		client, _ := newTestClient(t, handler(true))

		matches, err := client.ActiveIncidents(ctx, "PUSER1", "payroll")
		require.NoError(t, err)
		require.Len(t, matches.Assignees, 2)
		assert.Equal(t, []string{"alice@example.com"}, matches.AssigneeEmails)
	})

	t.Run("no matches yields empty result", func(t *testing.T) {
		client, _ := newTestClient(t, handler(false))

		matches, err := client.ActiveIncidents(ctx, "PUSER1", "does-not-appear")
		require.NoError(t, err)
		assert.False(t, matches.HasMatches())
		assert.Empty(t, matches.AssigneeEmails)
	})

	t.Run("transport failure propagates", func(t *testing.T) {
		client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := client.ActiveIncidents(ctx, "PUSER1", "payroll")
		assert.Error(t, err)
	})
}
