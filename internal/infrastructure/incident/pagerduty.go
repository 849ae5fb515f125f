// Package incident implements the incident lookup against the PagerDuty REST
// API for emergency access evaluation.
package incident

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"accessgate/internal/application/access"
	sharedConfig "accessgate/internal/shared/config"
	"accessgate/internal/shared/logger"
)

const (
	defaultBaseURL = "https://api.pagerduty.com"
	// Maximum response body size for PagerDuty API responses (1MB)
	maxResponseSize = 1 << 20
	// Default HTTP request timeout
	defaultTimeout = 10 * time.Second
)

// activeStatuses are the incident statuses that count as ongoing.
var activeStatuses = []string{"acknowledged", "triggered"}

type pdUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type pdUsersResponse struct {
	Users []pdUser `json:"users"`
}

type pdUserResponse struct {
	User pdUser `json:"user"`
}

type pdIncident struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	Service struct {
		Summary string `json:"summary"`
	} `json:"service"`
	Assignments []struct {
		Assignee struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
		} `json:"assignee"`
	} `json:"assignments"`
}

type pdIncidentsResponse struct {
	Incidents []pdIncident `json:"incidents"`
}

// Client implements access.IncidentLookup using the PagerDuty REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logger.Interface
}

// NewClient creates a PagerDuty client from configuration. An empty base URL
// falls back to the public API endpoint.
func NewClient(cfg *sharedConfig.PagerDutyConfig, logger logger.Interface) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// Ensure Client implements IncidentLookup
var _ access.IncidentLookup = (*Client)(nil)

// LookupUserID resolves a username to a PagerDuty user ID via the user search
// endpoint. Returns an empty ID without error when no user matches.
func (c *Client) LookupUserID(ctx context.Context, username string) (string, error) {
	query := url.Values{}
	query.Set("query", username)

	var resp pdUsersResponse
	if err := c.get(ctx, "/users", query, &resp); err != nil {
		return "", fmt.Errorf("failed to look up pagerduty user %q: %w", username, err)
	}
	if len(resp.Users) == 0 {
		c.logger.Debugw("no pagerduty user found", "query", username)
		return "", nil
	}
	return resp.Users[0].ID, nil
}

// lookupUserEmail fetches the login email of a PagerDuty user by ID.
func (c *Client) lookupUserEmail(ctx context.Context, userID string) (string, error) {
	var resp pdUserResponse
	if err := c.get(ctx, "/users/"+userID, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch pagerduty user %q: %w", userID, err)
	}
	return resp.User.Email, nil
}

// ActiveIncidents lists the user's acknowledged and triggered incidents and
// keeps those whose service summary or title contains matchString, compared
// case-insensitively. Assignees and their emails are de-duplicated across the
// matching incidents; an assignee whose email cannot be resolved is dropped
// from the email set but kept in the assignee list.
func (c *Client) ActiveIncidents(ctx context.Context, userID, matchString string) (*access.IncidentMatches, error) {
	query := url.Values{}
	query.Set("user_ids[]", userID)
	for _, status := range activeStatuses {
		query.Add("statuses[]", status)
	}

	var resp pdIncidentsResponse
	if err := c.get(ctx, "/incidents", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to list pagerduty incidents for user %q: %w", userID, err)
	}

	needle := strings.ToLower(matchString)
	matches := &access.IncidentMatches{}
	seenAssignees := map[string]bool{}
	seenEmails := map[string]bool{}
	emailByAssignee := map[string]string{}

	for _, raw := range resp.Incidents {
		if !strings.Contains(strings.ToLower(raw.Service.Summary), needle) &&
			!strings.Contains(strings.ToLower(raw.Title), needle) {
			continue
		}

		incident := access.Incident{
			ID:      raw.ID,
			Title:   raw.Title,
			HTMLURL: raw.HTMLURL,
		}
		for _, assignment := range raw.Assignments {
			assignee := access.IncidentAssignee{
				Name: assignment.Assignee.Summary,
				ID:   assignment.Assignee.ID,
			}
			incident.Assignees = append(incident.Assignees, assignee)

			email, cached := emailByAssignee[assignee.ID]
			if !cached {
				resolved, err := c.lookupUserEmail(ctx, assignee.ID)
				if err != nil {
					c.logger.Warnw("failed to resolve incident assignee email",
						"assignee_id", assignee.ID, "assignee", assignee.Name, "error", err)
					resolved = ""
				}
				email = resolved
				emailByAssignee[assignee.ID] = email
			}
			if email != "" {
				incident.AssigneeEmails = append(incident.AssigneeEmails, email)
			}

			if !seenAssignees[assignee.ID] {
				seenAssignees[assignee.ID] = true
				matches.Assignees = append(matches.Assignees, assignee)
			}
			if email != "" && !seenEmails[email] {
				seenEmails[email] = true
				matches.AssigneeEmails = append(matches.AssigneeEmails, email)
			}
		}

		matches.Incidents = append(matches.Incidents, incident)
	}

	return matches, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
