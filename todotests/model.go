package todotests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edutask/edutask-e2e-tests/browser"
)

// ItemState is the state of one to-do item in the expected-state model.
type ItemState int

const (
	Absent ItemState = iota
	Unchecked
	Checked
	Removed
)

func (s ItemState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Unchecked:
		return "unchecked"
	case Checked:
		return "checked"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("ItemState(%d)", int(s))
	}
}

// ErrIllegalTransition means a scenario tried to do something to an item that its current
// state does not allow, such as toggling an item it already removed. It is a bug in the
// scenario, not in the application.
var ErrIllegalTransition = errors.New("illegal to-do transition")

// Handle refers to one item instance in a Model. Adding the same text twice gives two
// handles.
type Handle int

// NoItem is returned by Model.Add for a no-op addition.
const NoItem Handle = -1

type modelItem struct {
	text  string
	state ItemState
}

// Model is the expected content of a task's to-do list. Removed items are remembered, so
// that operations on them can be rejected, but they are not expected on the page.
type Model struct {
	items []modelItem
}

// ModelFromPage builds a model of the list as currently rendered. rows and checkers are the
// results of querying the rows and their checkers, which are in the same order.
func ModelFromPage(rows, checkers []browser.Element) (*Model, error) {
	if len(rows) != len(checkers) {
		return nil, fmt.Errorf("found %d to-do rows but %d checkers", len(rows), len(checkers))
	}
	m := &Model{}
	for i, row := range rows {
		state := Unchecked
		if checkers[i].HasClass(classChecked) {
			state = Checked
		}
		m.items = append(m.items, modelItem{text: row.Text, state: state})
	}
	return m, nil
}

// Add appends a new unchecked item. Adding empty or blank text changes nothing and returns
// NoItem.
func (m *Model) Add(text string) Handle {
	if strings.TrimSpace(text) == "" {
		return NoItem
	}
	m.items = append(m.items, modelItem{text: text, state: Unchecked})
	return Handle(len(m.items) - 1)
}

// Toggle flips an item between checked and unchecked.
func (m *Model) Toggle(h Handle) error {
	switch m.State(h) {
	case Unchecked:
		m.items[h].state = Checked
	case Checked:
		m.items[h].state = Unchecked
	default:
		return fmt.Errorf("%w: cannot toggle %s item %d", ErrIllegalTransition, m.State(h), h)
	}
	return nil
}

// Remove deletes an item. The items after it keep their relative order.
func (m *Model) Remove(h Handle) error {
	switch m.State(h) {
	case Unchecked, Checked:
		m.items[h].state = Removed
		return nil
	default:
		return fmt.Errorf("%w: cannot remove %s item %d", ErrIllegalTransition, m.State(h), h)
	}
}

// State returns Absent for a handle that the model never gave out.
func (m *Model) State(h Handle) ItemState {
	if h < 0 || int(h) >= len(m.items) {
		return Absent
	}
	return m.items[h].state
}

func (m *Model) Text(h Handle) string {
	if m.State(h) == Absent {
		return ""
	}
	return m.items[h].text
}

// Index returns the position at which the item is rendered, or -1 if it is not on the page.
func (m *Model) Index(h Handle) int {
	switch m.State(h) {
	case Absent, Removed:
		return -1
	}
	index := 0
	for i := 0; i < int(h); i++ {
		if m.items[i].state != Removed {
			index++
		}
	}
	return index
}

// Len is the number of items expected on the page.
func (m *Model) Len() int {
	n := 0
	for _, item := range m.items {
		if item.state != Removed {
			n++
		}
	}
	return n
}

// Visible returns the texts of the items expected on the page, in order.
func (m *Model) Visible() []string {
	var ret []string
	for _, item := range m.items {
		if item.state != Removed {
			ret = append(ret, item.text)
		}
	}
	return ret
}

// Verify compares the rendered rows and checkers with the model. A row matches an item if
// its text contains the item's text.
func (m *Model) Verify(rows, checkers []browser.Element) error {
	if len(rows) != m.Len() {
		return fmt.Errorf("expected %d to-do rows but found %d", m.Len(), len(rows))
	}
	if len(checkers) != len(rows) {
		return fmt.Errorf("found %d to-do rows but %d checkers", len(rows), len(checkers))
	}
	i := 0
	for _, item := range m.items {
		if item.state == Removed {
			continue
		}
		if !strings.Contains(rows[i].Text, item.text) {
			return fmt.Errorf("expected row %d to contain %q but it was %q", i, item.text, rows[i].Text)
		}
		if checked := checkers[i].HasClass(classChecked); checked != (item.state == Checked) {
			return fmt.Errorf("expected row %d (%q) to be %s, but its checker has classes %v",
				i, item.text, item.state, checkers[i].Classes)
		}
		i++
	}
	return nil
}

func (m *Model) String() string {
	var parts []string
	for _, item := range m.items {
		if item.state != Removed {
			parts = append(parts, fmt.Sprintf("%q:%s", item.text, item.state))
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
