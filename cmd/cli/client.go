package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

type tokenData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// apiClient talks to the readdit HTTP API.
type apiClient struct {
	base  string
	http  *http.Client
	token string
}

func newAPIClient() *apiClient {
	return &apiClient{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// authed loads the stored token; commands that need a session fail with a
// hint when there is none.
func (c *apiClient) authed() (*apiClient, error) {
	td, err := readToken(tokenPath)
	if err != nil || td.Token == "" {
		return nil, errors.New("no session, run `readdit session new` first")
	}
	c.token = td.Token
	return c, nil
}

// withOptionalToken attaches the stored token when there is one.
func (c *apiClient) withOptionalToken() *apiClient {
	if td, err := readToken(tokenPath); err == nil {
		c.token = td.Token
	}
	return c
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// websocketURL turns the API base into the live endpoint URL.
func (c *apiClient) websocketURL(path string) (string, error) {
	u, err := url.Parse(c.base)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	ws := &url.URL{Scheme: scheme, Host: u.Host, Path: strings.TrimRight(u.Path, "/") + path}
	if c.token != "" {
		ws.RawQuery = url.Values{"token": {c.token}}.Encode()
	}
	return ws.String(), nil
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.readdit-token"
	}
	return filepath.Join(home, ".readdit", "token")
}

func saveToken(path string, td tokenData) error {
	if td.Token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (tokenData, error) {
	var td tokenData
	data, err := os.ReadFile(path)
	if err != nil {
		return td, err
	}
	if err := json.Unmarshal(data, &td); err != nil {
		return td, err
	}
	td.Token = strings.TrimSpace(td.Token)
	return td, nil
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
