package bq

import (
	"errors"
	"testing"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

func TestStateName(t *testing.T) {
	cases := map[bigquery.State]string{
		bigquery.Pending:  "PENDING",
		bigquery.Running:  "RUNNING",
		bigquery.Done:     "DONE",
		bigquery.State(0): "UNKNOWN",
	}
	for state, want := range cases {
		if got := stateName(state); got != want {
			t.Fatalf("stateName(%v)=%q want %q", state, got, want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&googleapi.Error{Code: 404}) {
		t.Fatal("404 should be not found")
	}
	if isNotFound(&googleapi.Error{Code: 409}) {
		t.Fatal("409 is not not-found")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatal("plain error is not not-found")
	}
}
