package todotests

import (
	"strings"

	"github.com/edutask/edutask-e2e-tests/browser"

	"github.com/stretchr/testify/require"
)

// TodoList is the to-do list of the open task detail view, together with the model of what
// it should contain. Every action goes to both, and then the page must come to match the
// model; a mismatch fails the test immediately.
type TodoList struct {
	t       *T
	session *Session
	model   *Model
}

// OpenTaskDetail logs in as the seeded user, opens the seeded task, and reads its current
// to-do list into a model.
func (t *T) OpenTaskDetail() *TodoList {
	session := t.Session()
	require.NoError(t, session.OpenTaskDetail(t.ctx(), t.Seed().Email))
	rows, checkers, err := session.readList(t.ctx())
	require.NoError(t, err)
	model, err := ModelFromPage(rows, checkers)
	require.NoError(t, err)
	t.Debug("To-do list on opening: %s", model)
	return &TodoList{t: t, session: session, model: model}
}

func (l *TodoList) add(text string) Handle {
	require.NoError(l.t, l.session.AddTodo(l.t.ctx(), text))
	h := l.model.Add(text)
	l.requireMatchesModel()
	return h
}

func (l *TodoList) toggle(h Handle) {
	index := l.model.Index(h)
	require.NoError(l.t, l.model.Toggle(h))
	require.NoError(l.t, l.session.ToggleTodo(l.t.ctx(), index))
	l.requireMatchesModel()
}

func (l *TodoList) remove(h Handle) {
	index := l.model.Index(h)
	require.NoError(l.t, l.model.Remove(h))
	require.NoError(l.t, l.session.RemoveTodo(l.t.ctx(), index))
	l.requireMatchesModel()
}

func (l *TodoList) requireMatchesModel() {
	require.NoError(l.t, l.session.AwaitModel(l.t.ctx(), l.model))
}

func (l *TodoList) rows() []browser.Element {
	rows, err := l.session.TodoRows(l.t.ctx())
	require.NoError(l.t, err)
	return rows
}

func (l *TodoList) checker(h Handle) browser.Element {
	checkers, err := l.session.TodoCheckers(l.t.ctx())
	require.NoError(l.t, err)
	index := l.model.Index(h)
	require.True(l.t, index >= 0 && index < len(checkers), "no checker for to-do %q", l.model.Text(h))
	return checkers[index]
}

// countContaining counts the rows whose text contains s.
func countContaining(rows []browser.Element, s string) int {
	n := 0
	for _, row := range rows {
		if strings.Contains(row.Text, s) {
			n++
		}
	}
	return n
}
