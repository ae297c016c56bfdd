package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pcdmatch/internal/domain/types"
)

// ProbeClient fetches matches from a running service.
type ProbeClient struct {
	client  *http.Client
	baseURL string
}

// NewProbeClient creates a client for the service at baseURL.
func NewProbeClient(baseURL string, timeout time.Duration) *ProbeClient {
	return &ProbeClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Matches calls GET /candidates/{id}/matches. A negative threshold is omitted
// so the service default applies.
func (c *ProbeClient) Matches(ctx context.Context, candidate int64, threshold float64) ([]types.Match, error) {
	target := c.baseURL + "/candidates/" + strconv.FormatInt(candidate, 10) + "/matches"
	if threshold >= 0 {
		target += "?" + url.Values{"threshold": {strconv.FormatFloat(threshold, 'f', -1, 64)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbe, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbe, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrProbe, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProbe, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out []types.Match
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrProbe, err)
	}
	return out, nil
}

// FormatMatches renders matches as an aligned plain-text table.
func FormatMatches(ms []types.Match) string {
	if len(ms) == 0 {
		return "no matches\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-28s %-14s %6s %9s\n", "JOB", "TITLE", "LOCATION", "MATCH", "COVERAGE")
	for _, m := range ms {
		fmt.Fprintf(&b, "%-6d %-28.28s %-14.14s %5d%% %8.0f%%\n",
			m.JobID, m.Title, m.Location, m.MatchPercent, m.AccessibilityMatch.Coverage*100)
	}
	return b.String()
}
