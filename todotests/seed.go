package todotests

import (
	"context"
	"errors"
	"fmt"

	"github.com/edutask/edutask-e2e-tests/edutask"
	"github.com/edutask/edutask-e2e-tests/servicedef"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultTaskTitle = "Test task"

// Seed is the backend state created for one scenario group.
type Seed struct {
	Email     string
	UserID    primitive.ObjectID
	TaskID    primitive.ObjectID
	TaskTitle string
}

// SetUpGroup seeds a user and a task for the current scenario group and opens the browser
// page that the group's scenarios share. If anything fails here the group fails immediately
// and none of its scenarios run. Both the user and the page are cleaned up when the group
// ends.
func (t *T) SetUpGroup() {
	seed := t.seedTask()
	console := &consoleRouter{target: t.context.DebugLogger()}
	page, err := t.env.launcher.NewPage(t.ctx(), console)
	require.NoError(t, err, "could not open browser page")
	t.Defer(func() {
		if err := page.Close(); err != nil {
			t.Debug("Error closing browser page: %s", err)
		}
	})
	t.group = &group{seed: seed, page: page, console: console}
}

func (t *T) seedTask() Seed {
	client := t.env.client.WithLogger(t.context.DebugLogger())
	fixture := t.env.fixture

	userID, err := client.SeedUser(t.ctx(), fixture.User())
	require.NoError(t, err, "could not seed user %s", fixture.Email)
	t.Debug("Seeded user %s with id %s", fixture.Email, userID.Hex())
	t.Defer(func() {
		ctx, cancel := t.detachedContext(cleanupTimeout)
		defer cancel()
		assert.NoError(t, deleteSeededUser(ctx, client, userID, t.Debug))
	})

	title := uniqueTitle(fixture.TaskTitle)
	taskID, err := client.CreateTask(t.ctx(), servicedef.CreateTaskParams{
		Title:       title,
		Description: fixture.TaskDescription,
		UserID:      userID.Hex(),
		URL:         fixture.TaskURL,
		Todos:       fixture.Todos,
	})
	require.NoError(t, err, "could not seed task")
	t.Debug("Seeded task %q with id %s", title, taskID.Hex())

	return Seed{Email: fixture.Email, UserID: userID, TaskID: taskID, TaskTitle: title}
}

// deleteSeededUser removes the seeded user. A user that is already gone is not an error.
func deleteSeededUser(
	ctx context.Context,
	client *edutask.Client,
	id primitive.ObjectID,
	debug func(string, ...interface{}),
) error {
	err := client.DeleteUser(ctx, id)
	if errors.Is(err, edutask.ErrNotFound) {
		debug("Seeded user %s was already deleted", id.Hex())
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not delete seeded user %s: %w", id.Hex(), err)
	}
	debug("Deleted seeded user %s", id.Hex())
	return nil
}

// uniqueTitle makes titles unique across runs, so that a task left behind by an aborted run
// is never mistaken for the current one.
func uniqueTitle(base string) string {
	if base == "" {
		base = defaultTaskTitle
	}
	return fmt.Sprintf("%s %s", base, uuid.NewString()[:8])
}
