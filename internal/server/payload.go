package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sidd1721986/Elite-App/internal/models"
)

var errConflict = errors.New("conflict")

// userPayload, jobPayload and notePayload serialize with their Go field names, which gives the PascalCase keys
// an ASP.NET backend emits.
type userPayload struct {
	Id         string
	Name       string
	Email      string
	Phone      string
	Address    string
	Role       models.UserRole
	IsApproved bool
}

type contactPayload struct {
	Name  string
	Phone string
	Email string
}

type notePayload struct {
	Id        int
	JobId     int
	AuthorId  string
	Content   string
	CreatedAt string
}

type jobPayload struct {
	Id              int
	CustomerId      string
	Customer        *userPayload
	VendorId        *string
	Vendor          *userPayload
	Address         string
	ContactPhone    string
	ContactEmail    string
	Contacts        []contactPayload
	Description     string
	Photos          string
	Urgency         models.Urgency
	OtherDetails    string
	Status          models.JobStatus
	AssignedAt      *string
	AcceptedAt      *string
	ScopeOfWork     *string
	ContractAmount  *float64
	WorkStartDate   *string
	CompletedPhotos string
	IsInvoiced      bool
	ScheduledDate   *string
	CreatedAt       string
	Notes           []notePayload
}

func newUserPayload(a *account) userPayload {
	return userPayload{
		Id:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Address:    a.Address,
		Role:       a.Role,
		IsApproved: a.Approved,
	}
}

func newNotePayload(jobID int, n noteRecord) notePayload {
	return notePayload{Id: n.ID, JobId: jobID, AuthorId: n.AuthorID, Content: n.Content, CreatedAt: n.CreatedAt}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// payload must be called with mu held.
func (m *Marketplace) payload(j *jobRecord) jobPayload {
	p := jobPayload{
		Id:              j.ID,
		CustomerId:      j.CustomerID,
		VendorId:        optional(j.VendorID),
		Address:         j.Address,
		ContactPhone:    j.ContactPhone,
		ContactEmail:    j.ContactEmail,
		Contacts:        make([]contactPayload, 0, len(j.Contacts)),
		Description:     j.Description,
		Photos:          strings.Join(j.Photos, ","),
		Urgency:         j.Urgency,
		OtherDetails:    j.OtherDetails,
		Status:          j.Status,
		AssignedAt:      optional(j.AssignedAt),
		AcceptedAt:      optional(j.AcceptedAt),
		ScopeOfWork:     optional(j.ScopeOfWork),
		WorkStartDate:   optional(j.WorkStartDate),
		CompletedPhotos: strings.Join(j.CompletedPhotos, ","),
		IsInvoiced:      j.IsInvoiced,
		ScheduledDate:   optional(j.ScheduledDate),
		CreatedAt:       j.CreatedAt,
		Notes:           make([]notePayload, 0, len(j.Notes)),
	}
	if j.ContractAmount != nil {
		v := *j.ContractAmount
		p.ContractAmount = &v
	}
	if c, ok := m.accounts[j.CustomerID]; ok {
		u := newUserPayload(c)
		p.Customer = &u
	}
	if v, ok := m.accounts[j.VendorID]; ok {
		u := newUserPayload(v)
		p.Vendor = &u
	}
	for _, c := range j.Contacts {
		p.Contacts = append(p.Contacts, contactPayload(c))
	}
	for _, n := range j.Notes {
		p.Notes = append(p.Notes, newNotePayload(j.ID, n))
	}
	return p
}

// photoList accepts either a JSON array of strings or a comma-joined string.
type photoList []string

func (p *photoList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	list, ok := photos(v)
	if !ok {
		return fmt.Errorf("photos must be a string or an array of strings")
	}
	*p = list
	return nil
}

func photos(v any) ([]string, bool) {
	out := []string{}
	switch v := v.(type) {
	case nil:
		return out, true
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case []any:
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

type jobSetter func(j *jobRecord, v any) string

func stringSetter(set func(j *jobRecord, s string)) jobSetter {
	return func(j *jobRecord, v any) string {
		switch s := v.(type) {
		case string:
			set(j, s)
		case nil:
			set(j, "")
		default:
			return "must be a string."
		}
		return ""
	}
}

// jobSetters maps lower-cased update keys onto the record fields they change.
var jobSetters = map[string]jobSetter{
	"address":       stringSetter(func(j *jobRecord, s string) { j.Address = s }),
	"contactphone":  stringSetter(func(j *jobRecord, s string) { j.ContactPhone = s }),
	"contactemail":  stringSetter(func(j *jobRecord, s string) { j.ContactEmail = s }),
	"description":   stringSetter(func(j *jobRecord, s string) { j.Description = s }),
	"otherdetails":  stringSetter(func(j *jobRecord, s string) { j.OtherDetails = s }),
	"scopeofwork":   stringSetter(func(j *jobRecord, s string) { j.ScopeOfWork = s }),
	"workstartdate": stringSetter(func(j *jobRecord, s string) { j.WorkStartDate = s }),
	"scheduleddate": stringSetter(func(j *jobRecord, s string) { j.ScheduledDate = s }),
	"urgency": func(j *jobRecord, v any) string {
		s, _ := v.(string)
		if !validUrgency(models.Urgency(s)) {
			return fmt.Sprintf("%v is not a valid urgency.", v)
		}
		j.Urgency = models.Urgency(s)
		return ""
	},
	"status": func(j *jobRecord, v any) string {
		s, _ := v.(string)
		if !validStatus(models.JobStatus(s)) {
			return fmt.Sprintf("%v is not a valid status.", v)
		}
		j.Status = models.JobStatus(s)
		return ""
	},
	"isinvoiced": func(j *jobRecord, v any) string {
		b, ok := v.(bool)
		if !ok {
			return "must be a boolean."
		}
		j.IsInvoiced = b
		return ""
	},
	"contractamount": func(j *jobRecord, v any) string {
		switch n := v.(type) {
		case nil:
			j.ContractAmount = nil
		case float64:
			j.ContractAmount = &n
		default:
			return "must be a number."
		}
		return ""
	},
	"photos": func(j *jobRecord, v any) string {
		list, ok := photos(v)
		if !ok {
			return "must be a string or an array of strings."
		}
		j.Photos = list
		return ""
	},
	"completedphotos": func(j *jobRecord, v any) string {
		list, ok := photos(v)
		if !ok {
			return "must be a string or an array of strings."
		}
		j.CompletedPhotos = list
		return ""
	},
	"contacts": func(j *jobRecord, v any) string {
		items, ok := v.([]any)
		if !ok {
			return "must be an array."
		}
		contacts := make([]models.Contact, 0, len(items))
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return "must contain objects."
			}
			c := models.Contact{}
			for k, val := range obj {
				s, _ := val.(string)
				switch strings.ToLower(k) {
				case "name":
					c.Name = s
				case "phone":
					c.Phone = s
				case "email":
					c.Email = s
				}
			}
			contacts = append(contacts, c)
		}
		j.Contacts = contacts
		return ""
	},
}

func canonicalField(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

// validationError collects field messages in the order they were found.
type validationError struct {
	fields []string
	msgs   map[string][]string
}

func invalid(field, msg string) *validationError {
	v := &validationError{}
	v.add(field, msg)
	return v
}

func (v *validationError) add(field, msg string) {
	if v.msgs == nil {
		v.msgs = make(map[string][]string)
	}
	if _, ok := v.msgs[field]; !ok {
		v.fields = append(v.fields, field)
	}
	v.msgs[field] = append(v.msgs[field], msg)
}

func (v *validationError) any() bool { return len(v.fields) > 0 }

func (v *validationError) Error() string {
	parts := make([]string, 0, len(v.fields))
	for _, f := range v.fields {
		parts = append(parts, f+": "+v.msgs[f][0])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// MarshalJSON writes the fields in insertion order; encoding a map would sort them.
func (v *validationError) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		msgs, err := json.Marshal(v.msgs[f])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msgs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
