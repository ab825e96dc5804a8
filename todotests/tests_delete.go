package todotests

import (
	"github.com/stretchr/testify/assert"
)

func DoDeleteTests(t *T) {
	t.SetUpGroup()

	t.Run("delete item", func(t *T) {
		list := t.OpenTaskDetail()
		h := list.add("Task to Delete")
		before := len(list.rows())
		list.remove(h)

		rows := list.rows()
		assert.Len(t, rows, before-1)
		assert.Equal(t, 0, countContaining(rows, "Task to Delete"), "removed to-do is still shown")
	})
}
