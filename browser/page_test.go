package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsXPath(t *testing.T) {
	assert.True(t, isXPath(`//div[contains(., 'Email Address')]//input`))
	assert.True(t, isXPath(`(//li)[2]`))
	assert.False(t, isXPath(`ul.todo-list .todo-item`))
	assert.False(t, isXPath(`input[placeholder="Add a new todo item"]`))
}

func TestElementHasClass(t *testing.T) {
	e := Element{Classes: []string{"checker", "unchecked"}}
	assert.True(t, e.HasClass("unchecked"))
	assert.False(t, e.HasClass("checked"))
	assert.False(t, Element{}.HasClass("checked"))
}

func TestNewLauncherRejectsUnknownDriver(t *testing.T) {
	_, err := NewLauncher(Options{Driver: "selenium"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"selenium"`)
	assert.Contains(t, err.Error(), DriverPlaywright)
}

func TestChromedpLauncherIsLazy(t *testing.T) {
	l, err := NewLauncher(Options{Driver: DriverChromedp, Headless: true})
	require.NoError(t, err)
	assert.NoError(t, l.Close())
}

func TestPlaywrightTimeoutsReadAsDeadlines(t *testing.T) {
	err := asDeadline(fmt.Errorf("click: %w", playwright.ErrTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	other := errors.New("target closed")
	assert.Equal(t, other, asDeadline(other))
	assert.NoError(t, asDeadline(nil))
}

func TestTimeoutFromUsesRemainingTime(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	timeout, err := timeoutFrom(ctx)
	require.NoError(t, err)
	require.NotNil(t, timeout)
	assert.InDelta(t, float64(time.Minute.Milliseconds()), *timeout, 1000)

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	_, err = timeoutFrom(expired)
	assert.Error(t, err)
}
