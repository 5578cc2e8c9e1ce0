package nats

import "testing"

func TestTaskSubject(t *testing.T) {
	got := TaskSubject("updated", "42")
	if got != "tasks.updated.42" {
		t.Errorf("TaskSubject = %q", got)
	}
}
