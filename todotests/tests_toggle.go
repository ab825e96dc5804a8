package todotests

import (
	"github.com/stretchr/testify/assert"
)

func DoToggleTests(t *T) {
	t.SetUpGroup()

	t.Run("mark item complete", func(t *T) {
		list := t.OpenTaskDetail()
		h := list.add("Complete Task")
		list.toggle(h)

		checker := list.checker(h)
		assert.True(t, checker.HasClass(classChecked), "checker has classes %v", checker.Classes)
	})

	t.Run("unmark item", func(t *T) {
		list := t.OpenTaskDetail()
		h := list.add("Toggle Task")
		list.toggle(h)
		list.toggle(h)

		checker := list.checker(h)
		assert.False(t, checker.HasClass(classChecked), "checker has classes %v", checker.Classes)
	})
}
