// Package todotests contains the EduTask end-to-end scenarios and their supporting API.
//
// Each scenario group seeds its own user and task through the backend, and shares one browser
// page between its scenarios. Every scenario logs in again and reopens the task, so scenarios
// do not depend on each other's UI state, only on the to-do items earlier scenarios left in
// the task.
//
// Infrastructure that is not specific to EduTask, such as test contexts, results and bounded
// polling, is in the lower-level framework package.
package todotests
