package normalize

import (
	"strings"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/models"
)

var (
	userFields = newFieldTable("id", "name", "email", "phone", "address", "role", "isApproved")

	jobFields = newFieldTable(
		"id", "customerId", "customer", "vendorId", "vendor", "address",
		"contactPhone", "contactEmail", "contacts", "description", "photos",
		"urgency", "otherDetails", "status", "assignedAt", "acceptedAt",
		"scopeOfWork", "contractAmount", "workStartDate", "completedPhotos",
		"isInvoiced", "scheduledDate", "createdAt", "notes",
	)

	contactFields = newFieldTable("name", "phone", "email")

	noteFields = newFieldTable("id", "jobId", "authorId", "content", "createdAt")

	authFields = newFieldTable("token", "user").with("token", "token", "Token", "accessToken", "AccessToken")
)

// now is swapped in tests.
var now = time.Now

// User converts a raw account payload into a canonical [models.User].
//
// Returns nil for null, non-object or empty-object input.
func User(raw any) *models.User {
	m, ok := asObject(raw)
	if !ok || len(m) == 0 {
		return nil
	}

	return &models.User{
		ID:         userFields.str(m, "id", ""),
		Name:       userFields.str(m, "name", ""),
		Email:      userFields.str(m, "email", ""),
		Phone:      userFields.str(m, "phone", ""),
		Address:    userFields.str(m, "address", ""),
		Role:       models.UserRole(userFields.str(m, "role", "")),
		IsApproved: userFields.boolean(m, "isApproved"),
	}
}

// Users normalizes an array payload of accounts, dropping entries that are not objects.
func Users(raw any) []models.User {
	items, _ := asArray(raw)
	users := make([]models.User, 0, len(items))
	for _, item := range items {
		if u := User(item); u != nil {
			users = append(users, *u)
		}
	}
	return users
}

// Job converts a raw job payload into a canonical [models.Job].
//
// Null or non-object input yields an empty job with default status and urgency.
func Job(raw any) models.Job {
	m, ok := asObject(raw)
	if !ok {
		return emptyJob()
	}

	return models.Job{
		ID:              jobFields.str(m, "id", ""),
		CustomerID:      jobFields.str(m, "customerId", ""),
		Customer:        User(resolved(jobFields, m, "customer")),
		VendorID:        jobFields.str(m, "vendorId", ""),
		Vendor:          User(resolved(jobFields, m, "vendor")),
		Address:         jobFields.str(m, "address", ""),
		ContactPhone:    jobFields.str(m, "contactPhone", ""),
		ContactEmail:    jobFields.str(m, "contactEmail", ""),
		Contacts:        contacts(resolved(jobFields, m, "contacts")),
		Description:     jobFields.str(m, "description", ""),
		Photos:          photos(resolved(jobFields, m, "photos")),
		Urgency:         models.Urgency(jobFields.str(m, "urgency", string(models.UrgencyNoRush))),
		OtherDetails:    jobFields.str(m, "otherDetails", ""),
		Status:          models.JobStatus(jobFields.str(m, "status", string(models.StatusSubmitted))),
		AssignedAt:      jobFields.str(m, "assignedAt", ""),
		AcceptedAt:      jobFields.str(m, "acceptedAt", ""),
		ScopeOfWork:     jobFields.str(m, "scopeOfWork", ""),
		ContractAmount:  jobFields.number(m, "contractAmount"),
		WorkStartDate:   jobFields.str(m, "workStartDate", ""),
		CompletedPhotos: completedPhotos(resolved(jobFields, m, "completedPhotos")),
		IsInvoiced:      jobFields.boolean(m, "isInvoiced"),
		ScheduledDate:   jobFields.str(m, "scheduledDate", ""),
		CreatedAt:       jobFields.str(m, "createdAt", timestamp()),
		Notes:           notes(resolved(jobFields, m, "notes")),
	}
}

// Jobs normalizes an array payload of jobs. Anything other than an array yields an empty slice.
func Jobs(raw any) []models.Job {
	items, _ := asArray(raw)
	jobs := make([]models.Job, 0, len(items))
	for _, item := range items {
		jobs = append(jobs, Job(item))
	}
	return jobs
}

// Note converts a raw note payload into a [models.JobNote].
func Note(raw any) models.JobNote {
	m, _ := asObject(raw)
	return models.JobNote{
		ID:        noteFields.str(m, "id", ""),
		JobID:     noteFields.str(m, "jobId", ""),
		AuthorID:  noteFields.str(m, "authorId", ""),
		Content:   noteFields.str(m, "content", ""),
		CreatedAt: noteFields.str(m, "createdAt", ""),
	}
}

// Notes normalizes an array payload of notes.
func Notes(raw any) []models.JobNote {
	return notes(raw)
}

// Session extracts the bearer token and the account from a login response.
func Session(raw any) (string, *models.User) {
	m, ok := asObject(raw)
	if !ok {
		return "", nil
	}
	return authFields.str(m, "token", ""), User(resolved(authFields, m, "user"))
}

func emptyJob() models.Job {
	return models.Job{
		Status:    models.StatusSubmitted,
		Urgency:   models.UrgencyNoRush,
		Photos:    []string{},
		Contacts:  []models.Contact{},
		Notes:     []models.JobNote{},
		CreatedAt: timestamp(),
	}
}

func timestamp() string {
	return now().UTC().Format(time.RFC3339Nano)
}

func resolved(t fieldTable, m map[string]any, field string) any {
	v, _ := t.resolve(m, field)
	return v
}

// photos splits comma-joined strings and keeps arrays; anything else is empty.
func photos(raw any) []string {
	out := []string{}
	switch v := generic(raw).(type) {
	case string:
		for _, p := range strings.Split(v, ",") {
			if p != "" {
				out = append(out, p)
			}
		}
	case []any:
		for _, p := range v {
			out = append(out, toString(p))
		}
	}
	return out
}

// completedPhotos keeps strings and joins arrays with ","; anything else is "".
func completedPhotos(raw any) string {
	switch v := generic(raw).(type) {
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = toString(p)
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

func contacts(raw any) []models.Contact {
	out := []models.Contact{}
	items, ok := asArray(raw)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := asObject(item)
		if !ok {
			continue
		}
		out = append(out, models.Contact{
			Name:  contactFields.str(m, "name", ""),
			Phone: contactFields.str(m, "phone", ""),
			Email: contactFields.str(m, "email", ""),
		})
	}
	return out
}

func notes(raw any) []models.JobNote {
	out := []models.JobNote{}
	items, ok := asArray(raw)
	if !ok {
		return out
	}
	for _, item := range items {
		if _, ok := asObject(item); !ok {
			continue
		}
		out = append(out, Note(item))
	}
	return out
}

// Token resolves the bearer token from a login payload.
func Token(raw any) string {
	token, _ := Session(raw)
	return token
}

// Apply merges a partial update keyed by canonical field names into job and
// normalizes the result. job itself is not modified.
func Apply(job models.Job, updates map[string]any) models.Job {
	m, ok := asObject(job)
	if !ok {
		m = map[string]any{}
	}
	for k, v := range updates {
		m[k] = v
	}
	return Job(m)
}
