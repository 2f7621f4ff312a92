package normalize

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/models"
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	v, err := Decode([]byte(s))
	if err != nil {
		t.Fatalf("failed to decode %q: %v", s, err)
	}
	return v
}

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
	return ts
}

func TestUser(t *testing.T) {
	t.Run("returns nil for unusable input", func(t *testing.T) {
		for name, raw := range map[string]any{
			"nil":          nil,
			"string":       "bob",
			"number":       json.Number("3"),
			"empty object": map[string]any{},
			"array":        []any{map[string]any{"id": "1"}},
		} {
			if u := User(raw); u != nil {
				t.Errorf("%s: expected nil, got %+v", name, u)
			}
		}
	})

	t.Run("resolves each field independently", func(t *testing.T) {
		raw := mustDecode(t, `{"Id": 7, "name": "Ada", "Email": "ada@example.com", "phone": "", "Phone": "555", "Role": "Vendor"}`)

		got := User(raw)
		want := &models.User{
			ID:    "7",
			Name:  "Ada",
			Email: "ada@example.com",
			Phone: "555",
			Role:  models.RoleVendor,
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("User() = %+v, want %+v", got, want)
		}
	})

	t.Run("lower-case key wins over capitalized key", func(t *testing.T) {
		got := User(map[string]any{"name": "lower", "Name": "Upper"})
		if got.Name != "lower" {
			t.Errorf("expected lower-case key to win, got %q", got.Name)
		}
	})

	t.Run("keeps false approval", func(t *testing.T) {
		got := User(mustDecode(t, `{"id": "1", "IsApproved": false}`))
		if got.IsApproved == nil || *got.IsApproved {
			t.Errorf("expected isApproved=false, got %v", got.IsApproved)
		}
	})

	t.Run("missing optional fields stay unset", func(t *testing.T) {
		got := User(map[string]any{"id": "1"})
		if got.Role != "" || got.IsApproved != nil {
			t.Errorf("expected optional fields unset, got %+v", got)
		}
		if got.Name != "" || got.Email != "" || got.Address != "" {
			t.Errorf("expected empty string defaults, got %+v", got)
		}
	})

	t.Run("accepts canonical values", func(t *testing.T) {
		in := &models.User{ID: "9", Name: "Vee", Role: models.RoleAdmin}
		if got := User(in); !reflect.DeepEqual(got, in) {
			t.Errorf("User(canonical) = %+v, want %+v", got, in)
		}
	})
}

func TestJob(t *testing.T) {
	t.Run("empty job for unusable input", func(t *testing.T) {
		ts := fixedNow(t)

		for name, raw := range map[string]any{"nil": nil, "string": "job", "number": 12.0} {
			got := Job(raw)
			if got.Status != models.StatusSubmitted {
				t.Errorf("%s: expected status %q, got %q", name, models.StatusSubmitted, got.Status)
			}
			if got.Urgency != models.UrgencyNoRush {
				t.Errorf("%s: expected urgency %q, got %q", name, models.UrgencyNoRush, got.Urgency)
			}
			if got.Photos == nil || len(got.Photos) != 0 {
				t.Errorf("%s: expected empty photos, got %#v", name, got.Photos)
			}
			if got.Contacts == nil || len(got.Contacts) != 0 {
				t.Errorf("%s: expected empty contacts, got %#v", name, got.Contacts)
			}
			if got.ID != "" || got.CompletedPhotos != "" {
				t.Errorf("%s: expected sentinel empty values, got %+v", name, got)
			}
			if got.CreatedAt != ts.Format(time.RFC3339Nano) {
				t.Errorf("%s: expected createdAt %s, got %s", name, ts.Format(time.RFC3339Nano), got.CreatedAt)
			}
		}
	})

	t.Run("photos", func(t *testing.T) {
		tc := []struct {
			name string
			raw  string
			want []string
		}{
			{name: "comma joined string drops empty segments", raw: `{"photos": "a,b,,c"}`, want: []string{"a", "b", "c"}},
			{name: "capitalized key", raw: `{"Photos": "x.jpg"}`, want: []string{"x.jpg"}},
			{name: "array kept", raw: `{"photos": ["p1", "p2"]}`, want: []string{"p1", "p2"}},
			{name: "empty string", raw: `{"photos": ""}`, want: []string{}},
			{name: "wrong type", raw: `{"photos": 3}`, want: []string{}},
			{name: "missing", raw: `{}`, want: []string{}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got := Job(mustDecode(t, tt.raw)).Photos
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("photos = %#v, want %#v", got, tt.want)
				}
			})
		}
	})

	t.Run("completed photos", func(t *testing.T) {
		tc := []struct {
			name string
			raw  string
			want string
		}{
			{name: "string kept", raw: `{"completedPhotos": "a,b"}`, want: "a,b"},
			{name: "array joined", raw: `{"CompletedPhotos": ["a", "b"]}`, want: "a,b"},
			{name: "wrong type", raw: `{"completedPhotos": {"a": 1}}`, want: ""},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := Job(mustDecode(t, tt.raw)).CompletedPhotos; got != tt.want {
					t.Errorf("completedPhotos = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("contacts and notes require arrays", func(t *testing.T) {
		got := Job(mustDecode(t, `{"contacts": "Sam", "notes": {"id": "n1"}}`))
		if len(got.Contacts) != 0 || got.Contacts == nil {
			t.Errorf("expected empty contacts, got %#v", got.Contacts)
		}
		if len(got.Notes) != 0 || got.Notes == nil {
			t.Errorf("expected empty notes, got %#v", got.Notes)
		}

		got = Job(mustDecode(t, `{"Contacts": [{"Name": "Sam", "phone": "1"}], "Notes": [{"Id": 3, "content": "hi"}]}`))
		if len(got.Contacts) != 1 || got.Contacts[0].Name != "Sam" || got.Contacts[0].Phone != "1" {
			t.Errorf("unexpected contacts %#v", got.Contacts)
		}
		if len(got.Notes) != 1 || got.Notes[0].ID != "3" || got.Notes[0].Content != "hi" {
			t.Errorf("unexpected notes %#v", got.Notes)
		}
	})

	t.Run("PascalCase payload", func(t *testing.T) {
		raw := mustDecode(t, `{
			"Id": 42,
			"CustomerId": "c1",
			"Customer": {"Id": "c1", "Name": "Casey"},
			"Vendor": {},
			"Address": "1 Main St",
			"Description": "Leaky roof",
			"Status": "Assigned",
			"Urgency": "Immediate",
			"ContractAmount": 0,
			"IsInvoiced": true,
			"CreatedAt": "2026-01-01T00:00:00Z"
		}`)

		got := Job(raw)
		if got.ID != "42" {
			t.Errorf("expected id 42, got %q", got.ID)
		}
		if got.Customer == nil || got.Customer.Name != "Casey" {
			t.Errorf("expected normalized customer, got %+v", got.Customer)
		}
		if got.Vendor != nil {
			t.Errorf("expected empty vendor object to normalize to nil, got %+v", got.Vendor)
		}
		if got.Status != models.StatusAssigned || got.Urgency != models.UrgencyImmediate {
			t.Errorf("unexpected status/urgency %q/%q", got.Status, got.Urgency)
		}
		if got.ContractAmount == nil || *got.ContractAmount != 0 {
			t.Errorf("expected zero contract amount to be kept, got %v", got.ContractAmount)
		}
		if got.IsInvoiced == nil || !*got.IsInvoiced {
			t.Errorf("expected isInvoiced true, got %v", got.IsInvoiced)
		}
		if got.CreatedAt != "2026-01-01T00:00:00Z" {
			t.Errorf("unexpected createdAt %q", got.CreatedAt)
		}
	})

	t.Run("typed go values", func(t *testing.T) {
		got := Job(map[string]any{"id": 5, "photos": []string{"a"}, "contractAmount": 99.5})
		if got.ID != "5" || !reflect.DeepEqual(got.Photos, []string{"a"}) {
			t.Errorf("unexpected job %+v", got)
		}
		if got.ContractAmount == nil || *got.ContractAmount != 99.5 {
			t.Errorf("unexpected contract amount %v", got.ContractAmount)
		}
	})
}

func TestJobIdempotent(t *testing.T) {
	fixedNow(t)

	raws := []string{
		`null`,
		`{}`,
		`{"id": "1", "photos": "a,b,,c", "CompletedPhotos": ["x", "y"], "createdAt": "2026-02-02T00:00:00Z"}`,
		`{"Id": 2, "Customer": {"Name": "N", "IsApproved": false}, "Contacts": [{"Name": "C"}], "contractAmount": 12.75, "notes": [{"id": "n"}]}`,
	}

	for _, s := range raws {
		t.Run(s, func(t *testing.T) {
			once := Job(mustDecode(t, s))
			twice := Job(once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("normalization not idempotent:\n once  %+v\n twice %+v", once, twice)
			}

			data, err := json.Marshal(once)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if roundTrip := Job(mustDecode(t, string(data))); !reflect.DeepEqual(once, roundTrip) {
				t.Errorf("snapshot round trip differs:\n once %+v\n back %+v", once, roundTrip)
			}
		})
	}
}

func TestJobs(t *testing.T) {
	got := Jobs(mustDecode(t, `[{"id": "1"}, null, {"Id": "3"}]`))
	if len(got) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "" || got[2].ID != "3" {
		t.Errorf("unexpected ids %q %q %q", got[0].ID, got[1].ID, got[2].ID)
	}

	if got := Jobs(mustDecode(t, `{"id": "1"}`)); got == nil || len(got) != 0 {
		t.Errorf("expected empty slice for non-array, got %#v", got)
	}

	typed := []models.Job{{ID: "a", Photos: []string{}, Contacts: []models.Contact{}, Notes: []models.JobNote{}, CreatedAt: "t"}}
	if got := Jobs(typed); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected typed slice to normalize, got %+v", got)
	}
}

func TestUsers(t *testing.T) {
	got := Users(mustDecode(t, `[{"Id": "1", "Name": "A"}, {}, "x", {"id": "2"}]`))
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("unexpected users %+v", got)
	}
}

func TestSession(t *testing.T) {
	token, user := Session(mustDecode(t, `{"Token": "abc", "User": {"Id": 1, "Email": "e@x"}}`))
	if token != "abc" {
		t.Errorf("expected token abc, got %q", token)
	}
	if user == nil || user.ID != "1" || user.Email != "e@x" {
		t.Errorf("unexpected user %+v", user)
	}

	token, user = Session("nope")
	if token != "" || user != nil {
		t.Errorf("expected empty session for non-object, got %q %+v", token, user)
	}
}
