package todotests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edutask/edutask-e2e-tests/browser"
	"github.com/edutask/edutask-e2e-tests/framework"
)

const (
	DefaultWaitTimeout = time.Second * 8
	DefaultSettle      = time.Second
)

// Config holds the frontend location and the timing of every wait in a scenario.
type Config struct {
	FrontendURL  string
	WaitTimeout  time.Duration
	PollInterval time.Duration
	// Settle is how long an action that should change nothing is watched before it is
	// accepted as a no-op.
	Settle time.Duration
}

func (c Config) withDefaults() Config {
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = framework.DefaultPollInterval
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	return c
}

// Session drives one browser page through the EduTask frontend. Its methods do not make
// assertions; they return an error. Every wait and every single page action is bounded by
// Config.WaitTimeout, and running out of time is reported as a *framework.TimeoutError naming
// the wait or action.
type Session struct {
	page   browser.Page
	config Config
	logger framework.Logger
}

func NewSession(page browser.Page, config Config, logger framework.Logger) *Session {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Session{page: page, config: config.withDefaults(), logger: logger}
}

// Login loads the frontend, enters the email in the login form and waits for the task
// overview.
func (s *Session) Login(ctx context.Context, email string) error {
	s.logger.Printf("Loading %s", s.config.FrontendURL)
	if err := s.act(ctx, "loading the frontend", func(ctx context.Context) error {
		return s.page.Navigate(ctx, s.config.FrontendURL)
	}); err != nil {
		return fmt.Errorf("could not load frontend: %w", err)
	}
	if err := s.waitVisible(ctx, "the email field of the login form", selLoginEmail); err != nil {
		return err
	}
	s.logger.Printf("Logging in as %s", email)
	if err := s.clear(ctx, selLoginEmail); err != nil {
		return err
	}
	if err := s.typeInto(ctx, selLoginEmail, email); err != nil {
		return err
	}
	if err := s.submit(ctx, selLoginEmail); err != nil {
		return fmt.Errorf("could not submit login form: %w", err)
	}
	return s.waitFor(ctx, fmt.Sprintf("a heading containing %q", overviewHeading), func(ctx context.Context) (bool, error) {
		headings, err := s.page.Query(ctx, selHeading)
		if err != nil {
			return false, err
		}
		for _, h := range headings {
			if strings.Contains(h.Text, overviewHeading) {
				return true, nil
			}
		}
		return false, nil
	})
}

// OpenFirstTask clicks the first task tile of the overview and waits until the to-do input
// of the task detail view is visible. Nothing may be done in the detail view before this
// returns.
func (s *Session) OpenFirstTask(ctx context.Context) error {
	if err := s.waitVisible(ctx, "a task tile", selTaskTileImg); err != nil {
		return err
	}
	if err := s.click(ctx, selTaskTileImg, 0); err != nil {
		return fmt.Errorf("could not open task: %w", err)
	}
	return s.waitVisible(ctx, "the to-do input of the task detail view", selTodoInput)
}

// OpenTaskDetail logs in and opens the first task, which for a seeded user is the seeded
// task.
func (s *Session) OpenTaskDetail(ctx context.Context, email string) error {
	if err := s.Login(ctx, email); err != nil {
		return err
	}
	return s.OpenFirstTask(ctx)
}

func (s *Session) TodoRows(ctx context.Context) ([]browser.Element, error) {
	return s.query(ctx, selTodoItem)
}

func (s *Session) TodoCheckers(ctx context.Context) ([]browser.Element, error) {
	return s.query(ctx, selTodoChecker)
}

func (s *Session) TodoInputValue(ctx context.Context) (string, error) {
	inputs, err := s.query(ctx, selTodoInput)
	if err != nil {
		return "", err
	}
	if len(inputs) == 0 {
		return "", fmt.Errorf("no element matches %s", selTodoInput)
	}
	return inputs[0].Value, nil
}

func (s *Session) AddButton(ctx context.Context) (browser.Element, error) {
	buttons, err := s.query(ctx, selTodoAdd)
	if err != nil {
		return browser.Element{}, err
	}
	if len(buttons) == 0 {
		return browser.Element{}, fmt.Errorf("no element matches %s", selTodoAdd)
	}
	return buttons[0], nil
}

func (s *Session) TypeTodo(ctx context.Context, text string) error {
	return s.typeInto(ctx, selTodoInput, text)
}

func (s *Session) ClearTodoInput(ctx context.Context) error {
	return s.clear(ctx, selTodoInput)
}

func (s *Session) ClickAdd(ctx context.Context) error {
	return s.click(ctx, selTodoAdd, 0)
}

// AddTodo types text into the to-do input and clicks Add. It does not wait for the new row.
func (s *Session) AddTodo(ctx context.Context, text string) error {
	s.logger.Printf("Adding to-do %q", text)
	if err := s.TypeTodo(ctx, text); err != nil {
		return err
	}
	return s.ClickAdd(ctx)
}

// ToggleTodo clicks the checker of the row at index, counting from 0 in document order.
func (s *Session) ToggleTodo(ctx context.Context, index int) error {
	s.logger.Printf("Toggling to-do %d", index)
	return s.click(ctx, selTodoChecker, index)
}

func (s *Session) RemoveTodo(ctx context.Context, index int) error {
	s.logger.Printf("Removing to-do %d", index)
	return s.click(ctx, selTodoRemover, index)
}

// AwaitModel waits until the rendered to-do list matches the model.
func (s *Session) AwaitModel(ctx context.Context, model *Model) error {
	var mismatch error
	err := s.waitFor(ctx, "the to-do list to match "+model.String(), func(ctx context.Context) (bool, error) {
		rows, checkers, err := s.readList(ctx)
		if err != nil {
			return false, err
		}
		mismatch = model.Verify(rows, checkers)
		return mismatch == nil, nil
	})
	var te *framework.TimeoutError
	if errors.As(err, &te) && te.LastErr == nil {
		te.LastErr = mismatch
	}
	return err
}

// TodoCountStays checks that the number of rows stays at count for the settle period.
func (s *Session) TodoCountStays(ctx context.Context, count int) error {
	return framework.Consistently(ctx, fmt.Sprintf("the to-do count to stay at %d", count),
		s.config.Settle, s.config.PollInterval,
		func(ctx context.Context) (bool, error) {
			rows, err := s.TodoRows(ctx)
			if err != nil {
				return false, err
			}
			if len(rows) != count {
				s.logger.Printf("To-do count changed from %d to %d", count, len(rows))
			}
			return len(rows) == count, nil
		})
}

// TaskTiles returns the tiles of the task overview once at least one is visible.
func (s *Session) TaskTiles(ctx context.Context) ([]browser.Element, error) {
	if err := s.waitVisible(ctx, "a task tile", selTaskTile); err != nil {
		return nil, err
	}
	return s.query(ctx, selTaskTile)
}

// CreateTaskFromForm fills in the task creation form of the overview and submits it.
func (s *Session) CreateTaskFromForm(ctx context.Context, title, url string) error {
	if err := s.waitVisible(ctx, "the task creation form", selNewTaskTitle); err != nil {
		return err
	}
	s.logger.Printf("Creating task %q from the overview form", title)
	if err := s.typeInto(ctx, selNewTaskTitle, title); err != nil {
		return err
	}
	if err := s.typeInto(ctx, selNewTaskURL, url); err != nil {
		return err
	}
	if err := s.submit(ctx, selNewTaskTitle); err != nil {
		return fmt.Errorf("could not submit task creation form: %w", err)
	}
	return nil
}

// AwaitTaskTileCount waits until the overview shows exactly count tiles.
func (s *Session) AwaitTaskTileCount(ctx context.Context, count int) error {
	return s.waitFor(ctx, fmt.Sprintf("%d task tiles", count), func(ctx context.Context) (bool, error) {
		tiles, err := s.page.Query(ctx, selTaskTile)
		if err != nil {
			return false, err
		}
		return len(tiles) == count, nil
	})
}

func (s *Session) readList(ctx context.Context) ([]browser.Element, []browser.Element, error) {
	rows, err := s.TodoRows(ctx)
	if err != nil {
		return nil, nil, err
	}
	checkers, err := s.TodoCheckers(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rows, checkers, nil
}

func (s *Session) waitVisible(ctx context.Context, what, selector string) error {
	return s.waitFor(ctx, what, func(ctx context.Context) (bool, error) {
		elements, err := s.page.Query(ctx, selector)
		if err != nil {
			return false, err
		}
		for _, e := range elements {
			if e.Visible {
				return true, nil
			}
		}
		return false, nil
	})
}

func (s *Session) waitFor(ctx context.Context, condition string, predicate framework.Predicate) error {
	err := framework.Poll(ctx, condition, s.config.WaitTimeout, s.config.PollInterval, predicate)
	if err != nil {
		s.logger.Printf("Wait failed: %s", err)
	}
	return err
}

// act runs one page action bounded by the wait timeout. The browser libraries retry an action
// until its element shows up, so without a deadline a missing element would block forever.
func (s *Session) act(ctx context.Context, action string, f func(ctx context.Context) error) error {
	actCtx, cancel := context.WithTimeout(ctx, s.config.WaitTimeout)
	defer cancel()
	err := f(actCtx)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(actCtx.Err(), context.DeadlineExceeded) {
		err = &framework.TimeoutError{Condition: action, Timeout: s.config.WaitTimeout, LastErr: err}
		s.logger.Printf("Action failed: %s", err)
	}
	return err
}

func (s *Session) click(ctx context.Context, selector string, index int) error {
	return s.act(ctx, fmt.Sprintf("clicking %s [%d]", selector, index), func(ctx context.Context) error {
		return s.page.Click(ctx, selector, index)
	})
}

func (s *Session) typeInto(ctx context.Context, selector, text string) error {
	return s.act(ctx, "typing into "+selector, func(ctx context.Context) error {
		return s.page.Type(ctx, selector, text)
	})
}

func (s *Session) clear(ctx context.Context, selector string) error {
	return s.act(ctx, "clearing "+selector, func(ctx context.Context) error {
		return s.page.Clear(ctx, selector)
	})
}

func (s *Session) submit(ctx context.Context, selector string) error {
	return s.act(ctx, "submitting the form of "+selector, func(ctx context.Context) error {
		return s.page.Submit(ctx, selector)
	})
}

func (s *Session) query(ctx context.Context, selector string) ([]browser.Element, error) {
	var elements []browser.Element
	err := s.act(ctx, "reading "+selector, func(ctx context.Context) error {
		var err error
		elements, err = s.page.Query(ctx, selector)
		return err
	})
	return elements, err
}
