// Package lesson defines the domain models and collaborator interfaces for lesson content delivery.
package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/network"
	"github.com/spf13/viper"
)

// Access is the result of a subscription / free-quota check.
type Access struct {
	Allowed bool `json:"allowed"`
	// RedirectURL points to the paywall when access is denied.
	RedirectURL string `json:"redirect_url"`
}

// AccessGate decides whether a user may advance to the next lesson.
type AccessGate interface {
	CheckAccess(ctx context.Context, userID string) (Access, error)
}

// HTTPAccessGate implements AccessGate against the lingoreel REST API.
type HTTPAccessGate struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAccessGate creates an access gate client using the configured base URL.
func NewHTTPAccessGate() *HTTPAccessGate {
	return &HTTPAccessGate{
		baseURL: viper.GetString(key.ContentBaseURL),
		client:  network.Client,
	}
}

// CheckAccess queries the backend gate. An unreachable gate allows playback:
// the check exists to funnel users to the paywall, not to brick the client.
func (g *HTTPAccessGate) CheckAccess(ctx context.Context, userID string) (Access, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/access/%s", g.baseURL, userID), nil)
	if err != nil {
		return Access{Allowed: true}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Access{Allowed: true}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Access{Allowed: true}, nil
	}

	var access Access
	if err := json.NewDecoder(resp.Body).Decode(&access); err != nil {
		return Access{Allowed: true}, nil
	}
	return access, nil
}
