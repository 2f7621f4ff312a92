package models

import (
	"reflect"
	"testing"
)

func TestJobClone(t *testing.T) {
	amount := 1200.5
	approved := true
	job := Job{
		ID:             "42",
		Customer:       &User{ID: "c1", Name: "Casey", IsApproved: &approved},
		Photos:         []string{"a.jpg", "b.jpg"},
		Contacts:       []Contact{{Name: "Sam"}},
		Notes:          []JobNote{{ID: "n1", Content: "call first"}},
		ContractAmount: &amount,
	}

	clone := job.Clone()
	if !reflect.DeepEqual(job, clone) {
		t.Fatalf("clone differs from original: %+v vs %+v", clone, job)
	}

	clone.Photos[0] = "changed.jpg"
	clone.Contacts[0].Name = "Other"
	clone.Notes[0].Content = "edited"
	clone.Customer.Name = "Changed"
	*clone.Customer.IsApproved = false
	*clone.ContractAmount = 1

	if job.Photos[0] != "a.jpg" {
		t.Error("photos slice is aliased")
	}
	if job.Contacts[0].Name != "Sam" {
		t.Error("contacts slice is aliased")
	}
	if job.Notes[0].Content != "call first" {
		t.Error("notes slice is aliased")
	}
	if job.Customer.Name != "Casey" || !*job.Customer.IsApproved {
		t.Error("customer is aliased")
	}
	if *job.ContractAmount != 1200.5 {
		t.Error("contract amount is aliased")
	}
}

func TestCloneJobs(t *testing.T) {
	if CloneJobs(nil) != nil {
		t.Error("expected nil for nil input")
	}

	jobs := []Job{{ID: "1", Photos: []string{"x"}}, {ID: "2"}}
	out := CloneJobs(jobs)
	out[0].Photos[0] = "y"
	if jobs[0].Photos[0] != "x" {
		t.Error("expected deep copy of every element")
	}
}
