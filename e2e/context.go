package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext carries HTTP state between steps of one scenario.
type TestContext struct {
	BaseURL    string
	HTTPClient *http.Client

	LastStatus int
	LastBody   []byte

	tokens  map[string]string
	current string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.LastStatus = 0
	tc.LastBody = nil
	tc.tokens = map[string]string{}
	tc.current = ""
}

func (tc *TestContext) POST(path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	return tc.do(http.MethodPost, path, reader, headers)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, tc.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.LastStatus = resp.StatusCode
	tc.LastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastStatus() int {
	return tc.LastStatus
}

// GetResponseField reads a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.LastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.LastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from response: %s", field, tc.LastBody)
	}
	return v, nil
}

func (tc *TestContext) SetToken(identity, token string) {
	tc.tokens[identity] = token
	tc.current = token
}

// CurrentToken is the credential most recently obtained or forged.
func (tc *TestContext) CurrentToken() string {
	return tc.current
}
