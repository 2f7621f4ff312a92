// package models defines the data model for the services marketplace client
package models

// UserRole is the marketplace role of an account.
type UserRole string

const (
	RoleAdmin           UserRole = "Admin"
	RoleVendor          UserRole = "Vendor"
	RoleCustomer        UserRole = "Customer"
	RoleRealtor         UserRole = "Realtor"
	RolePropertyManager UserRole = "Property manager"
	RoleBusiness        UserRole = "Business"
	RoleHomeOwner       UserRole = "Home Owner"
	RoleLandlord        UserRole = "Landlord"
	RoleOther           UserRole = "Other"
)

// JobStatus is a step in the job lifecycle.
type JobStatus string

const (
	StatusSubmitted  JobStatus = "Submitted"
	StatusAssigned   JobStatus = "Assigned"
	StatusAccepted   JobStatus = "Accepted"
	StatusReachedOut JobStatus = "Reached Out"
	StatusApptSet    JobStatus = "Appt Set"
	StatusSale       JobStatus = "Sale"
	StatusFollowUp   JobStatus = "Follow Up"
	StatusExpired    JobStatus = "Expired"
	StatusCompleted  JobStatus = "Completed"
	StatusInvoiced   JobStatus = "Invoiced"
)

// Urgency describes how soon the customer needs the work done.
type Urgency string

const (
	UrgencyImmediate Urgency = "Immediate"
	UrgencyThisWeek  Urgency = "This week"
	UrgencyThisMonth Urgency = "This month"
	UrgencyNoRush    Urgency = "No rush"
)

// User is the canonical account shape.
type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	Role       UserRole `json:"role,omitempty"`
	IsApproved *bool    `json:"isApproved,omitempty"`
}

// Contact is an additional on-site contact for a job.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// JobNote is a free-text note attached to a job.
type JobNote struct {
	ID        string `json:"id"`
	JobID     string `json:"jobId"`
	AuthorID  string `json:"authorId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Job is the canonical service request shape.
//
// Photos, Contacts and Notes are never nil once normalized.
type Job struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customerId"`
	Customer        *User     `json:"customer,omitempty"`
	VendorID        string    `json:"vendorId,omitempty"`
	Vendor          *User     `json:"vendor,omitempty"`
	Address         string    `json:"address"`
	ContactPhone    string    `json:"contactPhone,omitempty"`
	ContactEmail    string    `json:"contactEmail,omitempty"`
	Contacts        []Contact `json:"contacts"`
	Description     string    `json:"description"`
	Photos          []string  `json:"photos"`
	Urgency         Urgency   `json:"urgency"`
	OtherDetails    string    `json:"otherDetails,omitempty"`
	Status          JobStatus `json:"status"`
	AssignedAt      string    `json:"assignedAt,omitempty"`
	AcceptedAt      string    `json:"acceptedAt,omitempty"`
	ScopeOfWork     string    `json:"scopeOfWork,omitempty"`
	ContractAmount  *float64  `json:"contractAmount,omitempty"`
	WorkStartDate   string    `json:"workStartDate,omitempty"`
	CompletedPhotos string    `json:"completedPhotos"`
	IsInvoiced      *bool     `json:"isInvoiced,omitempty"`
	ScheduledDate   string    `json:"scheduledDate,omitempty"`
	CreatedAt       string    `json:"createdAt"`
	Notes           []JobNote `json:"notes"`
}

// JobDraft is the request body for creating a job. The server assigns id, status and createdAt.
type JobDraft struct {
	CustomerID    string    `json:"customerId,omitempty"`
	Address       string    `json:"address"`
	ContactPhone  string    `json:"contactPhone,omitempty"`
	ContactEmail  string    `json:"contactEmail,omitempty"`
	Contacts      []Contact `json:"contacts"`
	Description   string    `json:"description"`
	Photos        []string  `json:"photos"`
	Urgency       Urgency   `json:"urgency"`
	OtherDetails  string    `json:"otherDetails,omitempty"`
	ScheduledDate string    `json:"scheduledDate,omitempty"`
}

// SaleData is the payload that moves a job into the Sale state.
type SaleData struct {
	ScopeOfWork    string  `json:"scopeOfWork"`
	ContractAmount float64 `json:"contractAmount"`
	WorkStartDate  string  `json:"workStartDate"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// SignupRequest is the registration request body.
type SignupRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Role      UserRole `json:"role"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	RoleOther string   `json:"roleOther,omitempty"`
}

// Clone returns a deep copy of the user. A nil receiver yields nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.IsApproved != nil {
		v := *u.IsApproved
		c.IsApproved = &v
	}
	return &c
}

// Clone returns a deep copy of the job so callers never alias slices owned by a store.
func (j Job) Clone() Job {
	c := j
	c.Customer = j.Customer.Clone()
	c.Vendor = j.Vendor.Clone()
	if j.Contacts != nil {
		c.Contacts = append(make([]Contact, 0, len(j.Contacts)), j.Contacts...)
	}
	if j.Photos != nil {
		c.Photos = append(make([]string, 0, len(j.Photos)), j.Photos...)
	}
	if j.Notes != nil {
		c.Notes = append(make([]JobNote, 0, len(j.Notes)), j.Notes...)
	}
	if j.ContractAmount != nil {
		v := *j.ContractAmount
		c.ContractAmount = &v
	}
	if j.IsInvoiced != nil {
		v := *j.IsInvoiced
		c.IsInvoiced = &v
	}
	return c
}

// CloneJobs deep-copies a job slice, preserving nil.
func CloneJobs(jobs []Job) []Job {
	if jobs == nil {
		return nil
	}
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}
