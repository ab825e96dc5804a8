package edutask

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/edutask/edutask-e2e-tests/framework"
	"github.com/edutask/edutask-e2e-tests/servicedef"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when the backend has no such user.
var ErrNotFound = errors.New("not found")

// StatusError is returned for an unexpected HTTP status from the backend.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	message := fmt.Sprintf("%s %s returned HTTP status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		message += ": " + e.Body
	}
	return message
}

// User is the part of a backend user document that the harness cares about.
type User struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
}

type idDocument struct {
	ID    primitive.ObjectID `bson:"_id"`
	Title string             `bson:"title"`
}

// Client seeds and cleans up data through the EduTask REST backend. Every call is synchronous:
// it returns only after the backend has answered.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     framework.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger framework.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// WithLogger returns a copy of the client that logs to the given logger, typically the debug
// logger of the current test.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	c1 := *c
	if logger != nil {
		c1.logger = logger
	}
	return &c1
}

// FindUserByEmail looks up a user. The backend answers anything but 200 when there is no
// such user, so every non-200 status is reported as ErrNotFound.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (User, error) {
	path := servicedef.PathUserByEmail + url.PathEscape(email)
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return User{}, err
	}
	if status != http.StatusOK {
		return User{}, fmt.Errorf("user %q: %w (HTTP status %d)", email, ErrNotFound, status)
	}
	var user User
	if err := bson.UnmarshalExtJSON(body, false, &user); err != nil {
		return User{}, fmt.Errorf("malformed user from backend: %w", err)
	}
	if user.ID.IsZero() {
		return User{}, fmt.Errorf("backend returned a user without an id: %s", string(body))
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	path := servicedef.PathUser + id.Hex()
	status, body, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	case status < 200 || status >= 300:
		return &StatusError{Method: http.MethodDelete, Path: path, Status: status, Body: string(body)}
	}
	return nil
}

func (c *Client) CreateUser(ctx context.Context, params servicedef.CreateUserParams) (primitive.ObjectID, error) {
	body, err := c.post(ctx, servicedef.PathCreateUser, params.Form())
	if err != nil {
		return primitive.NilObjectID, err
	}
	var doc idDocument
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return primitive.NilObjectID, fmt.Errorf("malformed response to user creation: %w", err)
	}
	if doc.ID.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("user creation response had no id: %s", string(body))
	}
	return doc.ID, nil
}

// CreateTask creates a task owned by params.UserID. Depending on the backend version the
// response is either the new task or the user's whole task list; in the latter case the
// task is picked out by title.
func (c *Client) CreateTask(ctx context.Context, params servicedef.CreateTaskParams) (primitive.ObjectID, error) {
	body, err := c.post(ctx, servicedef.PathCreateTask, params.Form())
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := taskIDFromResponse(body, params.Title)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("could not read task creation response: %w", err)
	}
	return id, nil
}

// SeedUser makes sure that exactly one user with this email exists, deleting any leftover
// from an earlier run first, and returns the new user's id.
func (c *Client) SeedUser(ctx context.Context, params servicedef.CreateUserParams) (primitive.ObjectID, error) {
	existing, err := c.FindUserByEmail(ctx, params.Email)
	switch {
	case err == nil:
		c.logger.Printf("Deleting leftover user %s (%s)", existing.ID.Hex(), existing.Email)
		if err := c.DeleteUser(ctx, existing.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return primitive.NilObjectID, fmt.Errorf("could not delete leftover user: %w", err)
		}
	case !errors.Is(err, ErrNotFound):
		return primitive.NilObjectID, err
	}
	return c.CreateUser(ctx, params)
}

func taskIDFromResponse(body []byte, title string) (primitive.ObjectID, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var wrapper struct {
			Tasks []idDocument `bson:"tasks"`
		}
		wrapped := append(append([]byte(`{"tasks":`), trimmed...), '}')
		if err := bson.UnmarshalExtJSON(wrapped, false, &wrapper); err != nil {
			return primitive.NilObjectID, err
		}
		for i := len(wrapper.Tasks) - 1; i >= 0; i-- {
			if wrapper.Tasks[i].Title == title && !wrapper.Tasks[i].ID.IsZero() {
				return wrapper.Tasks[i].ID, nil
			}
		}
		return primitive.NilObjectID, fmt.Errorf("no task titled %q in response", title)
	}
	var doc idDocument
	if err := bson.UnmarshalExtJSON(trimmed, false, &doc); err != nil {
		return primitive.NilObjectID, err
	}
	if doc.ID.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("response had no id: %s", string(body))
	}
	return doc.ID, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodPost, path, form)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &StatusError{Method: http.MethodPost, Path: path, Status: status, Body: string(body)}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (int, []byte, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		c.logger.Printf("%s %s %s", method, path, form.Encode())
	} else {
		c.logger.Printf("%s %s", method, path)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response to %s %s: %w", method, path, err)
	}
	c.logger.Printf("%s %s -> %d %s", method, path, resp.StatusCode, string(body))
	return resp.StatusCode, body, nil
}
