package todotests

// Selectors for the EduTask web frontend. They follow the rendered markup: the login form,
// the task overview with one .container-element tile per task, and the task detail view
// whose to-do list rows hold a .checker toggle, the text and a .remover control.
const (
	selLoginEmail   = `//div[contains(., 'Email Address')]//input[@type='text']`
	selHeading      = `h1`
	selTaskTile     = `.container-element`
	selTaskTileImg  = `.container-element img`
	selTodoInput    = `input[placeholder="Add a new todo item"]`
	selTodoAdd      = `input[type="submit"][value="Add"]`
	selTodoItem     = `ul.todo-list .todo-item`
	selTodoChecker  = `ul.todo-list .todo-item .checker`
	selTodoRemover  = `ul.todo-list .todo-item .remover`
	selNewTaskTitle = `form.submit-form #title`
	selNewTaskURL   = `form.submit-form #url`

	overviewHeading = "Your tasks,"

	classChecked   = "checked"
	classUnchecked = "unchecked"
)
