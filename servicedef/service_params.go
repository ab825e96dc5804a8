// Package servicedef describes the EduTask backend resources that the test harness uses for
// seeding and cleanup, and how their parameters are encoded on the wire.
package servicedef

import (
	"net/url"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	PathUserByEmail = "/users/bymail/"
	PathUser        = "/users/"
	PathCreateUser  = "/users/create"
	PathCreateTask  = "/tasks/create"
)

// CreateUserParams is the form body of POST /users/create.
type CreateUserParams struct {
	Email     string
	FirstName string
	LastName  string
}

func (p CreateUserParams) Form() url.Values {
	return url.Values{
		"email":     {p.Email},
		"firstName": {p.FirstName},
		"lastName":  {p.LastName},
	}
}

// CreateTaskParams is the form body of POST /tasks/create. The backend expects the to-do
// titles as a single form field holding a JSON array of strings.
type CreateTaskParams struct {
	Title       string
	Description string
	UserID      string
	URL         string
	Todos       []string
}

func (p CreateTaskParams) Form() url.Values {
	return url.Values{
		"title":       {p.Title},
		"description": {p.Description},
		"userid":      {p.UserID},
		"url":         {p.URL},
		"todos":       {TodosJSON(p.Todos)},
	}
}

// TodosJSON encodes to-do titles the way the task creation endpoint reads them. An empty
// list is encoded as "[]", never "null".
func TodosJSON(todos []string) string {
	b := ldvalue.ArrayBuildWithCapacity(len(todos))
	for _, t := range todos {
		b.Add(ldvalue.String(t))
	}
	return b.Build().JSONString()
}
