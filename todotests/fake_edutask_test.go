package todotests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/edutask/edutask-e2e-tests/browser"
	"github.com/edutask/edutask-e2e-tests/framework"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeEduTask is an in-memory EduTask deployment. Its backend is an http.Handler for the
// endpoints the harness seeds through, and its frontend is a browser.Page that renders the
// to-do view from the same state, using the same selectors as the real markup.
type fakeEduTask struct {
	lock  sync.Mutex
	users map[string]*fakeUser // keyed by email

	// Behaviors that the real frontend might have, or bugs it might have.
	disableEmptyAdd bool
	addEmptyItems   bool
	ignoreToggle    bool
	ignoreRemove    bool
	removeWrongRow  bool
	prependTodos    bool
	keepTodoInput   bool
	newTodosChecked bool
	failUserCreate  bool
	hangClicks      bool
	onClick         func()

	// Page calls whose context had no deadline.
	unboundedCalls map[string]int

	deletedUsers []string
	pagesOpened  int
	pagesClosed  int
}

type fakeUser struct {
	id    primitive.ObjectID
	email string
	tasks []*fakeTask
}

type fakeTask struct {
	id    primitive.ObjectID
	title string
	todos []*fakeTodo
}

type fakeTodo struct {
	text string
	done bool
}

func newFakeEduTask() *fakeEduTask {
	return &fakeEduTask{users: make(map[string]*fakeUser), unboundedCalls: make(map[string]int)}
}

// called records a page call made without a deadline, and fails calls whose context is done
// the way a browser driver does. The caller holds the lock.
func (f *fakeEduTask) called(ctx context.Context, call string) error {
	if _, ok := ctx.Deadline(); !ok {
		f.unboundedCalls[call]++
	}
	return ctx.Err()
}

func (f *fakeEduTask) userByID(id string) *fakeUser {
	for _, u := range f.users {
		if u.id.Hex() == id {
			return u
		}
	}
	return nil
}

func (f *fakeEduTask) userCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.users)
}

func oidJSON(id primitive.ObjectID) map[string]string {
	return map[string]string{"$oid": id.Hex()}
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func (f *fakeEduTask) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/users/bymail/"):
		u := f.users[strings.TrimPrefix(r.URL.Path, "/users/bymail/")]
		if u == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]interface{}{"_id": oidJSON(u.id), "email": u.email})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/users/"):
		u := f.userByID(strings.TrimPrefix(r.URL.Path, "/users/"))
		if u == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.users, u.email)
		f.deletedUsers = append(f.deletedUsers, u.id.Hex())
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPost && r.URL.Path == "/users/create":
		if f.failUserCreate {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = r.ParseForm()
		u := &fakeUser{id: primitive.NewObjectID(), email: r.PostForm.Get("email")}
		f.users[u.email] = u
		writeJSON(w, map[string]interface{}{"_id": oidJSON(u.id), "email": u.email})

	case r.Method == http.MethodPost && r.URL.Path == "/tasks/create":
		_ = r.ParseForm()
		u := f.userByID(r.PostForm.Get("userid"))
		if u == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var todos []string
		if err := json.Unmarshal([]byte(r.PostForm.Get("todos")), &todos); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		task := &fakeTask{id: primitive.NewObjectID(), title: r.PostForm.Get("title")}
		for _, text := range todos {
			task.todos = append(task.todos, &fakeTodo{text: text})
		}
		u.tasks = append(u.tasks, task)
		var response []interface{}
		for _, t := range u.tasks {
			response = append(response, map[string]interface{}{"_id": oidJSON(t.id), "title": t.title})
		}
		writeJSON(w, response)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeEduTask) NewPage(ctx context.Context, logger framework.Logger) (browser.Page, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.pagesOpened++
	return &fakePage{app: f, logger: logger}, nil
}

func (f *fakeEduTask) Close() error { return nil }

// fakePage is one tab showing the fake frontend.
type fakePage struct {
	app    *fakeEduTask
	logger framework.Logger

	loaded     bool
	user       *fakeUser
	task       *fakeTask
	loginInput string
	todoInput  string
	titleInput string
	urlInput   string
}

var errNoSuchElement = errors.New("no such element")

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	if err := p.app.called(ctx, "Navigate"); err != nil {
		return err
	}
	*p = fakePage{app: p.app, logger: p.logger, loaded: true}
	return nil
}

func visible(texts ...string) []browser.Element {
	ret := make([]browser.Element, 0, len(texts))
	for _, t := range texts {
		ret = append(ret, browser.Element{Text: t, Visible: true})
	}
	return ret
}

func (p *fakePage) Query(ctx context.Context, selector string) ([]browser.Element, error) {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	if err := p.app.called(ctx, "Query"); err != nil {
		return nil, err
	}
	if !p.loaded {
		return nil, nil
	}
	switch selector {
	case selLoginEmail:
		if p.user == nil {
			return []browser.Element{{Value: p.loginInput, Visible: true}}, nil
		}
	case selHeading:
		if p.user != nil {
			return visible("Your tasks, Mon Doe"), nil
		}
		return visible("Login"), nil
	case selTaskTile, selTaskTileImg:
		if p.user != nil {
			var titles []string
			for _, t := range p.user.tasks {
				titles = append(titles, t.title)
			}
			return visible(titles...), nil
		}
	case selNewTaskTitle:
		if p.user != nil && p.task == nil {
			return []browser.Element{{Value: p.titleInput, Visible: true}}, nil
		}
	case selNewTaskURL:
		if p.user != nil && p.task == nil {
			return []browser.Element{{Value: p.urlInput, Visible: true}}, nil
		}
	case selTodoInput:
		if p.task != nil {
			return []browser.Element{{Value: p.todoInput, Visible: true}}, nil
		}
	case selTodoAdd:
		if p.task != nil {
			return []browser.Element{{Value: "Add", Visible: true, Disabled: p.app.disableEmptyAdd && p.todoInput == ""}}, nil
		}
	case selTodoItem, selTodoChecker, selTodoRemover:
		if p.task == nil {
			return nil, nil
		}
		var ret []browser.Element
		for _, todo := range p.task.todos {
			switch selector {
			case selTodoItem:
				ret = append(ret, browser.Element{Text: todo.text + " ✖", Visible: true})
			case selTodoChecker:
				class := classUnchecked
				if todo.done {
					class = classChecked
				}
				ret = append(ret, browser.Element{Classes: []string{"checker", class}, Visible: true})
			case selTodoRemover:
				ret = append(ret, browser.Element{Text: "✖", Visible: true})
			}
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("fake page does not know selector %s", selector)
	}
	return nil, nil
}

func (p *fakePage) field(selector string) (*string, error) {
	switch {
	case selector == selLoginEmail && p.loaded && p.user == nil:
		return &p.loginInput, nil
	case selector == selTodoInput && p.task != nil:
		return &p.todoInput, nil
	case selector == selNewTaskTitle && p.user != nil && p.task == nil:
		return &p.titleInput, nil
	case selector == selNewTaskURL && p.user != nil && p.task == nil:
		return &p.urlInput, nil
	}
	return nil, fmt.Errorf("%w: %s", errNoSuchElement, selector)
}

func (p *fakePage) Type(ctx context.Context, selector, text string) error {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	if err := p.app.called(ctx, "Type"); err != nil {
		return err
	}
	f, err := p.field(selector)
	if err != nil {
		return err
	}
	*f += text
	return nil
}

func (p *fakePage) Clear(ctx context.Context, selector string) error {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	if err := p.app.called(ctx, "Clear"); err != nil {
		return err
	}
	f, err := p.field(selector)
	if err != nil {
		return err
	}
	*f = ""
	return nil
}

func (p *fakePage) Submit(ctx context.Context, selector string) error {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	if err := p.app.called(ctx, "Submit"); err != nil {
		return err
	}
	if _, err := p.field(selector); err != nil {
		return err
	}
	switch selector {
	case selLoginEmail:
		if u := p.app.users[p.loginInput]; u != nil {
			p.user = u
		} else {
			p.logger.Printf("JS console error: no user %s", p.loginInput)
		}
	case selNewTaskTitle, selNewTaskURL:
		if p.titleInput != "" {
			p.user.tasks = append(p.user.tasks, &fakeTask{id: primitive.NewObjectID(), title: p.titleInput})
			p.titleInput, p.urlInput = "", ""
		}
	case selTodoInput:
		p.addTodo()
	}
	return nil
}

func (p *fakePage) addTodo() {
	if p.todoInput != "" || p.app.addEmptyItems {
		todo := &fakeTodo{text: p.todoInput, done: p.app.newTodosChecked}
		if p.app.prependTodos {
			p.task.todos = append([]*fakeTodo{todo}, p.task.todos...)
		} else {
			p.task.todos = append(p.task.todos, todo)
		}
	}
	if !p.app.keepTodoInput {
		p.todoInput = ""
	}
}

func (p *fakePage) Click(ctx context.Context, selector string, index int) error {
	p.app.lock.Lock()
	hang, onClick := p.app.hangClicks, p.app.onClick
	err := p.app.called(ctx, "Click")
	p.app.lock.Unlock()
	if err != nil {
		return err
	}
	if onClick != nil {
		onClick()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if hang {
		// Like a browser driver waiting for an element that never appears.
		<-ctx.Done()
		return ctx.Err()
	}

	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	switch selector {
	case selTaskTileImg:
		if p.user != nil && index < len(p.user.tasks) {
			p.task = p.user.tasks[index]
			return nil
		}
	case selTodoAdd:
		if p.task != nil {
			if !(p.app.disableEmptyAdd && p.todoInput == "") {
				p.addTodo()
			}
			return nil
		}
	case selTodoChecker:
		if p.task != nil && index < len(p.task.todos) {
			if !p.app.ignoreToggle {
				p.task.todos[index].done = !p.task.todos[index].done
			}
			return nil
		}
	case selTodoRemover:
		if p.task != nil && index < len(p.task.todos) {
			switch {
			case p.app.ignoreRemove:
			case p.app.removeWrongRow && len(p.task.todos) > 1:
				wrong := (index + 1) % len(p.task.todos)
				p.task.todos = append(p.task.todos[:wrong], p.task.todos[wrong+1:]...)
			default:
				p.task.todos = append(p.task.todos[:index], p.task.todos[index+1:]...)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s [%d]", errNoSuchElement, selector, index)
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	var b strings.Builder
	b.WriteString("<ul class=\"todo-list\">")
	if p.task != nil {
		for _, todo := range p.task.todos {
			fmt.Fprintf(&b, "<li class=\"todo-item\">%s</li>", todo.text)
		}
	}
	b.WriteString("</ul>")
	return b.String(), nil
}

func (p *fakePage) Close() error {
	p.app.lock.Lock()
	defer p.app.lock.Unlock()
	p.app.pagesClosed++
	return nil
}
