package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mislam/topinspect/domain"
)

// APIError is a non-2xx response decoded from the service's shared error
// shape {error, code, details?}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// APIClient calls the auth service with bearer tokens managed by a
// Coordinator. A request rejected with EXPIRED_TOKEN is retried exactly once
// after a coordinated refresh; INVALID_TOKEN and INVALID_REFRESH_TOKEN end
// the session.
type APIClient struct {
	baseURL     string
	httpClient  *http.Client
	coordinator *Coordinator
}

func NewAPIClient(baseURL string, httpClient *http.Client, coordinator *Coordinator) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{baseURL: baseURL, httpClient: httpClient, coordinator: coordinator}
}

// Do sends an authenticated JSON request and decodes a 2xx response into
// out (when out is non-nil).
func (c *APIClient) Do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.doOnce(ctx, method, path, body, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case "EXPIRED_TOKEN":
		if _, rerr := c.coordinator.Refresh(ctx); rerr != nil {
			return rerr
		}
		return c.doOnce(ctx, method, path, body, out)
	case "INVALID_TOKEN", "INVALID_REFRESH_TOKEN":
		_ = c.coordinator.Logout(ctx)
		return err
	default:
		return err
	}
}

func (c *APIClient) doOnce(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.coordinator.AccessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{Status: resp.StatusCode, Code: payload.Code, Message: payload.Error}
}

// ServiceRefreshFunc returns a RefreshFunc that calls POST /auth/token/refresh.
func ServiceRefreshFunc(baseURL string, httpClient *http.Client) RefreshFunc {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return func(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
		payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/token/refresh", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, decodeAPIError(resp)
		}
		var body struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		return &domain.TokenPair{AccessToken: body.AccessToken, RefreshToken: body.RefreshToken}, nil
	}
}

// ServiceLogoutFunc returns a LogoutFunc that calls POST /auth/logout.
func ServiceLogoutFunc(baseURL string, httpClient *http.Client) LogoutFunc {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return func(ctx context.Context, refreshToken string) error {
		payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/logout", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return decodeAPIError(resp)
		}
		return nil
	}
}
