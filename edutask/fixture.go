package edutask

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/edutask/edutask-e2e-tests/servicedef"

	"gopkg.in/yaml.v3"
)

const (
	defaultTaskDescription = "(add a description here)"
	defaultTaskURL         = "dQw4w9WgXcQ"
)

var defaultTodos = []string{"Watch video"}

// Same rule the backend applies before looking a user up by email.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// Fixture is the static identity record that tests log in as, plus optional overrides for
// the task that gets seeded for that user. The file may be JSON or YAML.
type Fixture struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`

	TaskTitle       string   `yaml:"taskTitle"`
	TaskDescription string   `yaml:"taskDescription"`
	TaskURL         string   `yaml:"taskURL"`
	Todos           []string `yaml:"todos"`
}

// LoadFixture reads and validates a fixture file. Any error here is fatal for the test run.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("could not read fixture: %w", err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("malformed fixture: %w", err)
	}
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" {
		return Fixture{}, errors.New("fixture has no email")
	}
	if !emailPattern.MatchString(f.Email) {
		return Fixture{}, fmt.Errorf("fixture email %q is not a valid email address", f.Email)
	}
	if f.TaskDescription == "" {
		f.TaskDescription = defaultTaskDescription
	}
	if f.TaskURL == "" {
		f.TaskURL = defaultTaskURL
	}
	if f.Todos == nil {
		f.Todos = append([]string(nil), defaultTodos...)
	}
	return f, nil
}

func (f Fixture) User() servicedef.CreateUserParams {
	return servicedef.CreateUserParams{
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}
}

func (f Fixture) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}
