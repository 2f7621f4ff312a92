package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

// recordingMux captures request bodies and replies with canned JSON per "METHOD /path".
func recordingMux(t *testing.T, replies map[string]string) (http.Handler, func() []recorded) {
	t.Helper()

	var mu sync.Mutex
	var reqs []recorded
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()

		reply, ok := replies[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	})

	return h, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func TestJobService(t *testing.T) {
	ctx := context.Background()

	job42 := `{"Id": 42, "Status": "Assigned", "Photos": "a.jpg,,b.jpg", "Urgency": "Immediate", "Vendor": {"Id": "v1", "Name": "Vic"}}`

	t.Run("GetJobs normalizes every entry", func(t *testing.T) {
		h, _ := recordingMux(t, map[string]string{"GET /jobs": `[` + job42 + `, {"id": "7"}]`})
		svc := NewJobService(mustClient(t, h), nil)

		jobs, err := svc.GetJobs(ctx, false)
		if err != nil {
			t.Fatalf("GetJobs failed: %v", err)
		}
		if len(jobs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(jobs))
		}
		if jobs[0].ID != "42" || !reflect.DeepEqual(jobs[0].Photos, []string{"a.jpg", "b.jpg"}) {
			t.Errorf("unexpected first job %+v", jobs[0])
		}
		if jobs[0].Vendor == nil || jobs[0].Vendor.Name != "Vic" {
			t.Errorf("expected normalized vendor, got %+v", jobs[0].Vendor)
		}
		if jobs[1].Status != models.StatusSubmitted {
			t.Errorf("expected default status, got %q", jobs[1].Status)
		}
	})

	t.Run("lifecycle endpoints", func(t *testing.T) {
		h, requests := recordingMux(t, map[string]string{
			"GET /jobs/42":                job42,
			"PUT /jobs/42":                job42,
			"POST /jobs":                  `{"id": "99"}`,
			"POST /jobs/42/assign":        job42,
			"POST /jobs/42/accept":        job42,
			"POST /jobs/42/complete-sale": job42,
		})
		svc := NewJobService(mustClient(t, h), nil)

		if _, err := svc.GetJob(ctx, "42"); err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		created, err := svc.CreateJob(ctx, models.JobDraft{Address: "1 Main", Description: "Leak"})
		if err != nil {
			t.Fatalf("CreateJob failed: %v", err)
		}
		if created.ID != "99" {
			t.Errorf("expected created id 99, got %q", created.ID)
		}
		if _, err := svc.UpdateJob(ctx, "42", map[string]any{"description": "new"}); err != nil {
			t.Fatalf("UpdateJob failed: %v", err)
		}
		if _, err := svc.AssignVendor(ctx, "42", "v1"); err != nil {
			t.Fatalf("AssignVendor failed: %v", err)
		}
		if _, err := svc.AcceptJob(ctx, "42"); err != nil {
			t.Fatalf("AcceptJob failed: %v", err)
		}
		sale := models.SaleData{ScopeOfWork: "Roof", ContractAmount: 1500, WorkStartDate: "2026-02-01"}
		if _, err := svc.CompleteSale(ctx, "42", sale); err != nil {
			t.Fatalf("CompleteSale failed: %v", err)
		}

		got := requests()
		want := []struct {
			method, path string
			body         map[string]any
		}{
			{"GET", "/jobs/42", nil},
			{"POST", "/jobs", nil},
			{"PUT", "/jobs/42", map[string]any{"description": "new"}},
			{"POST", "/jobs/42/assign", map[string]any{"vendorId": "v1"}},
			{"POST", "/jobs/42/accept", map[string]any{}},
			{"POST", "/jobs/42/complete-sale", map[string]any{"scopeOfWork": "Roof", "contractAmount": 1500.0, "workStartDate": "2026-02-01"}},
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d requests, got %d", len(want), len(got))
		}
		for i, w := range want {
			if got[i].method != w.method || got[i].path != w.path {
				t.Errorf("request %d: expected %s %s, got %s %s", i, w.method, w.path, got[i].method, got[i].path)
			}
			if w.body != nil && !reflect.DeepEqual(got[i].body, w.body) {
				t.Errorf("request %d: expected body %v, got %v", i, w.body, got[i].body)
			}
		}

		draft := got[1].body
		if draft["urgency"] != string(models.UrgencyNoRush) {
			t.Errorf("expected default urgency in draft, got %v", draft["urgency"])
		}
		if photos, ok := draft["photos"].([]any); !ok || len(photos) != 0 {
			t.Errorf("expected empty photos array in draft, got %v", draft["photos"])
		}
	})

	t.Run("Notes", func(t *testing.T) {
		h, requests := recordingMux(t, map[string]string{
			"POST /jobs/5/notes": `{"Id": 1, "JobId": 5, "Content": "call first"}`,
			"GET /jobs/5/notes":  `[{"id": "1", "content": "call first"}, "junk"]`,
		})
		svc := NewJobService(mustClient(t, h), nil)

		note, err := svc.AddNote(ctx, "5", "call first")
		if err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
		if note.ID != "1" || note.JobID != "5" {
			t.Errorf("unexpected note %+v", note)
		}
		if body := requests()[0].body; body["content"] != "call first" {
			t.Errorf("unexpected note body %v", body)
		}

		notes, err := svc.GetNotes(ctx, "5")
		if err != nil {
			t.Fatalf("GetNotes failed: %v", err)
		}
		if len(notes) != 1 || notes[0].Content != "call first" {
			t.Errorf("unexpected notes %+v", notes)
		}
	})

	t.Run("non-object job response", func(t *testing.T) {
		h, _ := recordingMux(t, map[string]string{"POST /jobs/1/accept": `[]`})
		svc := NewJobService(mustClient(t, h), nil)

		if _, err := svc.AcceptJob(ctx, "1"); !errors.Is(err, shared.ErrDecodeResponse) {
			t.Errorf("expected ErrDecodeResponse, got %v", err)
		}
	})

	t.Run("errors pass through", func(t *testing.T) {
		h, _ := recordingMux(t, nil)
		svc := NewJobService(mustClient(t, h), nil)

		_, err := svc.GetJob(ctx, "404")
		var herr *HTTPError
		if !errors.As(err, &herr) || herr.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 HTTPError, got %v", err)
		}
	})
}

func mustClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	c, _ := newTestClient(t, h, ClientOpts{})
	return c
}
