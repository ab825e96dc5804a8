package todotests

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoCreateTests(t *T) {
	t.SetUpGroup()

	t.Run("add item", func(t *T) {
		list := t.OpenTaskDetail()
		before := list.rows()
		h := list.add("New Task")

		after := list.rows()
		assert.Len(t, after, len(before)+1)
		assert.Equal(t, countContaining(before, "New Task")+1, countContaining(after, "New Task"),
			"expected exactly one new row containing the text")

		value, err := list.session.TodoInputValue(t.ctx())
		require.NoError(t, err)
		assert.Equal(t, "", value, "to-do input should be cleared after adding")

		checker := list.checker(h)
		assert.True(t, checker.HasClass(classUnchecked), "new to-do's checker has classes %v", checker.Classes)
	})

	t.Run("add empty item is a no-op", func(t *T) {
		list := t.OpenTaskDetail()
		count := len(list.rows())

		require.NoError(t, list.session.ClearTodoInput(t.ctx()))
		button, err := list.session.AddButton(t.ctx())
		require.NoError(t, err)
		if button.Disabled {
			t.Debug("Add button is disabled while the input is empty")
		} else {
			t.Debug("Add button is enabled while the input is empty; clicking it")
			require.NoError(t, list.session.ClickAdd(t.ctx()))
		}
		list.model.Add("")

		require.NoError(t, list.session.TodoCountStays(t.ctx(), count))
		list.requireMatchesModel()
	})

	t.Run("add items preserves order", func(t *T) {
		list := t.OpenTaskDetail()
		texts := []string{"Task 1", "Task 2", "Task 3"}
		for _, text := range texts {
			list.add(text)
		}

		rows := list.rows()
		require.True(t, len(rows) >= len(texts), "expected at least %d rows, found %d", len(texts), len(rows))
		last := rows[len(rows)-len(texts):]
		for i, text := range texts {
			assert.Contains(t, last[i].Text, text, "row %d of the last %d", i, len(texts))
		}
		for i := range texts {
			row := rows[len(rows)-1-i]
			assert.Contains(t, row.Text, texts[len(texts)-1-i], "row %d from the end", i)
		}
	})
}
