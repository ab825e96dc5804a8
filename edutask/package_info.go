// Package edutask talks to the EduTask application outside of the browser: it loads the user
// fixture and seeds or removes users and tasks through the backend's REST API.
package edutask
