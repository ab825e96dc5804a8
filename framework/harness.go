package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = time.Second * 10

// TestHarness holds what every test needs to reach the application under test: the base
// URLs of the EduTask backend and frontend, and the HTTP client used for seeding.
type TestHarness struct {
	backendBaseURL  string
	frontendBaseURL string
	httpClient      *http.Client
	logger          Logger
}

// NewTestHarness creates a TestHarness instance, and verifies that both the backend and the
// frontend are responding by polling them until they answer or statusQueryTimeout elapses.
func NewTestHarness(
	backendBaseURL string,
	frontendBaseURL string,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}

	h := &TestHarness{
		backendBaseURL:  strings.TrimSuffix(backendBaseURL, "/"),
		frontendBaseURL: strings.TrimSuffix(frontendBaseURL, "/"),
		httpClient:      &http.Client{Timeout: defaultHTTPTimeout},
		logger:          debugLogger,
	}

	if err := awaitService(h.httpClient, "backend", h.backendBaseURL, anyResponse, statusQueryTimeout, startupOutput); err != nil {
		return nil, err
	}
	if err := awaitService(h.httpClient, "frontend", h.frontendBaseURL, okResponse, statusQueryTimeout, startupOutput); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *TestHarness) BackendBaseURL() string {
	return h.backendBaseURL
}

func (h *TestHarness) FrontendBaseURL() string {
	return h.frontendBaseURL
}

func (h *TestHarness) HTTPClient() *http.Client {
	return h.httpClient
}

func (h *TestHarness) Logger() Logger {
	return h.logger
}

// anyResponse accepts any status below 500: the backend has no status resource, so a 404 for
// the root path still proves it is listening.
func anyResponse(status int) bool { return status < 500 }

func okResponse(status int) bool { return status == 200 }

func awaitService(
	client *http.Client,
	name string,
	url string,
	statusOK func(int) bool,
	timeout time.Duration,
	output io.Writer,
) error {
	fmt.Fprintf(output, "Connecting to %s at %s", name, url)
	defer fmt.Fprintln(output)

	err := Poll(context.Background(), name+" to respond", timeout, DefaultPollInterval,
		func(ctx context.Context) (bool, error) {
			fmt.Fprintf(output, ".")
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return false, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return false, err
			}
			_ = resp.Body.Close()
			if !statusOK(resp.StatusCode) {
				return false, fmt.Errorf("status code %d", resp.StatusCode)
			}
			return true, nil
		})
	var te *TimeoutError
	if errors.As(err, &te) {
		return fmt.Errorf("%s did not respond at %s, result of last query was: %w", name, url, te.LastErr)
	}
	return err
}
