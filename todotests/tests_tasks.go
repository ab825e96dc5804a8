package todotests

import (
	"github.com/stretchr/testify/require"
)

func DoTaskTests(t *T) {
	t.SetUpGroup()

	t.Run("create task from form", func(t *T) {
		session := t.Session()
		require.NoError(t, session.Login(t.ctx(), t.Seed().Email))
		tiles, err := session.TaskTiles(t.ctx())
		require.NoError(t, err)

		title := uniqueTitle("Form task")
		require.NoError(t, session.CreateTaskFromForm(t.ctx(), title, t.env.fixture.TaskURL))
		require.NoError(t, session.AwaitTaskTileCount(t.ctx(), len(tiles)+1))
	})
}
