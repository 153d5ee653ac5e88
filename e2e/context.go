package e2e

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

var scenarioSeq atomic.Uint32

// TestContext carries one scenario's browser: a cookie jar, a fixed client
// address and the last response.
type TestContext struct {
	baseURL  *url.URL
	client   *http.Client
	clientIP string

	lastStatus int
	lastHeader http.Header
	lastBody   []byte
}

// NewTestContext creates a context against the portal at baseURL. Redirects
// are not followed so steps can assert them.
func NewTestContext(baseURL string) (*TestContext, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse portal url: %w", err)
	}
	tc := &TestContext{baseURL: u}
	return tc, tc.Reset()
}

// Reset gives the scenario a fresh browser and client address.
func (tc *TestContext) Reset() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	tc.client = &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	// Each scenario poses as its own client; the portal must list the runner
	// in TRUSTED_PROXIES for the forwarded address to count.
	n := scenarioSeq.Add(1)
	tc.clientIP = fmt.Sprintf("198.51.%d.%d", (n>>8)&0xff, n&0xff)
	tc.lastStatus, tc.lastHeader, tc.lastBody = 0, nil, nil
	return nil
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL.String()+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

// POSTForm submits an urlencoded form the way the portal's pages do.
func (tc *TestContext) POSTForm(path string, form url.Values) error {
	req, err := http.NewRequest(http.MethodPost, tc.baseURL.String()+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

// SetCookie stores a cookie for the portal origin as if a previous response set it.
func (tc *TestContext) SetCookie(name, value string) {
	tc.client.Jar.SetCookies(tc.baseURL, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func (tc *TestContext) GetLastResponseStatus() int          { return tc.lastStatus }
func (tc *TestContext) GetLastResponseHeader(k string) string { return tc.lastHeader.Get(k) }
func (tc *TestContext) GetLastResponseBody() []byte          { return tc.lastBody }

func (tc *TestContext) do(req *http.Request) error {
	req.Header.Set("X-Forwarded-For", tc.clientIP)
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastStatus, tc.lastHeader, tc.lastBody = resp.StatusCode, resp.Header, body
	return nil
}
