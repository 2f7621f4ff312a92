package server

import (
	"fmt"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// SeedAccount describes an account created when the marketplace starts.
type SeedAccount struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
	Approved bool
}

// DefaultSeed is the account set the mock API starts with.
var DefaultSeed = []SeedAccount{
	{Name: "Site Admin", Email: "admin@elite.test", Password: "admin123", Role: models.RoleAdmin, Approved: true},
	{Name: "Valley Roofing", Email: "vendor@elite.test", Password: "vendor123", Role: models.RoleVendor, Approved: true},
	{Name: "Pending Plumbing", Email: "pending@elite.test", Password: "pending123", Role: models.RoleVendor},
	{Name: "Casey Customer", Email: "customer@elite.test", Password: "customer123", Role: models.RoleHomeOwner, Approved: true},
}

// MarketplaceOpts configures a [Marketplace].
type MarketplaceOpts struct {
	Cost int              // bcrypt cost, defaults to [bcrypt.DefaultCost]
	Now  func() time.Time // clock, defaults to [time.Now]
}

type account struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Address  string
	Role     models.UserRole
	Approved bool
	hash     []byte
}

type noteRecord struct {
	ID        int
	AuthorID  string
	Content   string
	CreatedAt string
}

type jobRecord struct {
	ID              int
	CustomerID      string
	VendorID        string
	Address         string
	ContactPhone    string
	ContactEmail    string
	Contacts        []models.Contact
	Description     string
	Photos          []string
	Urgency         models.Urgency
	OtherDetails    string
	Status          models.JobStatus
	AssignedAt      string
	AcceptedAt      string
	ScopeOfWork     string
	ContractAmount  *float64
	WorkStartDate   string
	CompletedPhotos []string
	IsInvoiced      bool
	ScheduledDate   string
	CreatedAt       string
	Notes           []noteRecord
}

// Marketplace is the in-memory backing store of the mock API.
type Marketplace struct {
	mu       sync.RWMutex
	accounts map[string]*account
	sessions map[string]string
	jobs     map[int]*jobRecord
	nextJob  int
	nextNote int
	cost     int
	now      func() time.Time
}

func NewMarketplace(opts MarketplaceOpts) *Marketplace {
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Marketplace{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		jobs:     make(map[int]*jobRecord),
		nextJob:  1,
		nextNote: 1,
		cost:     opts.Cost,
		now:      opts.Now,
	}
}

// Seed creates the given accounts, skipping emails that are already registered.
func (m *Marketplace) Seed(seed []SeedAccount) error {
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), m.cost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", s.Email, err)
		}

		m.mu.Lock()
		if m.byEmail(s.Email) == nil {
			id := uuid.NewString()
			m.accounts[id] = &account{ID: id, Name: s.Name, Email: s.Email, Role: s.Role, Approved: s.Approved, hash: hash}
		}
		m.mu.Unlock()
	}
	return nil
}

func (m *Marketplace) timestamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

// byEmail must be called with mu held.
func (m *Marketplace) byEmail(email string) *account {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

// roleGroup folds the customer-like roles together; login only distinguishes admins, vendors and everyone else.
func roleGroup(r models.UserRole) models.UserRole {
	switch r {
	case models.RoleAdmin, models.RoleVendor:
		return r
	default:
		return models.RoleCustomer
	}
}

// Login verifies credentials and opens a session.
func (m *Marketplace) Login(email, password string, role models.UserRole) (string, account, error) {
	m.mu.RLock()
	a := m.byEmail(strings.TrimSpace(email))
	var acct account
	if a != nil {
		acct = *a
	}
	m.mu.RUnlock()

	if a == nil || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return "", account{}, fmt.Errorf("%w: invalid email or password", shared.ErrAuthFailed)
	}
	if role != "" && roleGroup(role) != roleGroup(acct.Role) {
		return "", account{}, fmt.Errorf("%w: account is not registered as %s", shared.ErrAuthFailed, role)
	}
	if acct.Role == models.RoleVendor && !acct.Approved {
		return "", account{}, fmt.Errorf("%w: vendor account is pending approval", shared.ErrForbidden)
	}

	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = acct.ID
	m.mu.Unlock()
	return token, acct, nil
}

// Session resolves a bearer token into its account.
func (m *Marketplace) Session(token string) (account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sessions[token]
	if !ok {
		return account{}, false
	}
	a, ok := m.accounts[id]
	if !ok {
		return account{}, false
	}
	return *a, true
}

type registration struct {
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      models.UserRole `json:"role"`
	Address   string          `json:"address"`
	Phone     string          `json:"phone"`
	RoleOther string          `json:"roleOther"`
}

// Register creates an account. Vendors start unapproved.
func (m *Marketplace) Register(r registration) (account, error) {
	v := &validationError{}
	if strings.TrimSpace(r.Name) == "" {
		v.add("Name", "The Name field is required.")
	}
	if strings.TrimSpace(r.Email) == "" {
		v.add("Email", "The Email field is required.")
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		v.add("Email", "The Email field is not a valid e-mail address.")
	}
	if len(r.Password) < minPasswordLength {
		v.add("Password", fmt.Sprintf("The Password must be at least %d characters long.", minPasswordLength))
	}
	if r.Role == "" {
		r.Role = models.RoleCustomer
	}
	if r.Role == models.RoleAdmin {
		v.add("Role", "Admin accounts cannot be self-registered.")
	}
	if r.Role == models.RoleOther && strings.TrimSpace(r.RoleOther) == "" {
		v.add("RoleOther", "Please describe your role.")
	}
	if v.any() {
		return account{}, v
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), m.cost)
	if err != nil {
		return account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byEmail(r.Email) != nil {
		return account{}, fmt.Errorf("%w: email is already registered", errConflict)
	}
	a := &account{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		Phone:    r.Phone,
		Address:  r.Address,
		Role:     r.Role,
		Approved: r.Role != models.RoleVendor,
		hash:     hash,
	}
	m.accounts[a.ID] = a
	return *a, nil
}

// Vendors lists vendor accounts with the given approval state, ordered by name.
func (m *Marketplace) Vendors(approved bool) []userPayload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []userPayload{}
	for _, a := range m.accounts {
		if a.Role == models.RoleVendor && a.Approved == approved {
			out = append(out, newUserPayload(a))
		}
	}
	slices.SortFunc(out, func(a, b userPayload) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// SetApproval approves or rejects a vendor.
func (m *Marketplace) SetApproval(id string, approved bool) (userPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return userPayload{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	a.Approved = approved
	return newUserPayload(a), nil
}

// RemoveUser deletes an account, its sessions and any vendor assignment it holds.
func (m *Marketplace) RemoveUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	delete(m.accounts, id)
	for token, owner := range m.sessions {
		if owner == id {
			delete(m.sessions, token)
		}
	}
	for _, j := range m.jobs {
		if j.VendorID == id {
			j.VendorID = ""
			j.Status = models.StatusSubmitted
			j.AssignedAt = ""
			j.AcceptedAt = ""
		}
	}
	return nil
}

// visible must be called with mu held.
func (m *Marketplace) visible(viewer account, j *jobRecord) bool {
	switch viewer.Role {
	case models.RoleAdmin:
		return true
	case models.RoleVendor:
		return j.VendorID == viewer.ID
	default:
		return j.CustomerID == viewer.ID
	}
}

// lookup must be called with mu held.
func (m *Marketplace) lookup(viewer account, id string) (*jobRecord, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	j, ok := m.jobs[n]
	if !ok || !m.visible(viewer, j) {
		return nil, fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}
	return j, nil
}

// Jobs lists the jobs the viewer may see, newest first.
func (m *Marketplace) Jobs(viewer account) []jobPayload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*jobRecord, 0, len(m.jobs))
	for _, j := range m.jobs {
		if m.visible(viewer, j) {
			records = append(records, j)
		}
	}
	slices.SortFunc(records, func(a, b *jobRecord) int { return b.ID - a.ID })

	out := make([]jobPayload, 0, len(records))
	for _, j := range records {
		out = append(out, m.payload(j))
	}
	return out
}

func (m *Marketplace) Job(viewer account, id string) (jobPayload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return jobPayload{}, err
	}
	return m.payload(j), nil
}

type jobDraft struct {
	CustomerID    string           `json:"customerId"`
	Address       string           `json:"address"`
	ContactPhone  string           `json:"contactPhone"`
	ContactEmail  string           `json:"contactEmail"`
	Contacts      []models.Contact `json:"contacts"`
	Description   string           `json:"description"`
	Photos        photoList        `json:"photos"`
	Urgency       models.Urgency   `json:"urgency"`
	OtherDetails  string           `json:"otherDetails"`
	ScheduledDate string           `json:"scheduledDate"`
}

// CreateJob submits a job on behalf of the viewer. Admins may file for another customer.
func (m *Marketplace) CreateJob(viewer account, d jobDraft) (jobPayload, error) {
	if viewer.Role == models.RoleVendor {
		return jobPayload{}, fmt.Errorf("%w: vendors cannot submit jobs", shared.ErrForbidden)
	}
	v := &validationError{}
	if strings.TrimSpace(d.Address) == "" {
		v.add("Address", "The Address field is required.")
	}
	if strings.TrimSpace(d.Description) == "" {
		v.add("Description", "The Description field is required.")
	}
	if d.Urgency != "" && !validUrgency(d.Urgency) {
		v.add("Urgency", fmt.Sprintf("%q is not a valid urgency.", d.Urgency))
	}
	if v.any() {
		return jobPayload{}, v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	customer := viewer.ID
	if viewer.Role == models.RoleAdmin && d.CustomerID != "" {
		if _, ok := m.accounts[d.CustomerID]; !ok {
			return jobPayload{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, d.CustomerID)
		}
		customer = d.CustomerID
	}
	urgency := d.Urgency
	if urgency == "" {
		urgency = models.UrgencyNoRush
	}
	j := &jobRecord{
		ID:            m.nextJob,
		CustomerID:    customer,
		Address:       strings.TrimSpace(d.Address),
		ContactPhone:  d.ContactPhone,
		ContactEmail:  d.ContactEmail,
		Contacts:      append([]models.Contact{}, d.Contacts...),
		Description:   strings.TrimSpace(d.Description),
		Photos:        []string(d.Photos),
		Urgency:       urgency,
		OtherDetails:  d.OtherDetails,
		Status:        models.StatusSubmitted,
		ScheduledDate: d.ScheduledDate,
		CreatedAt:     m.timestamp(),
	}
	m.jobs[j.ID] = j
	m.nextJob++
	return m.payload(j), nil
}

// UpdateJob applies a partial update. Keys match case-insensitively and unknown keys are ignored.
func (m *Marketplace) UpdateJob(viewer account, id string, fields map[string]any) (jobPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return jobPayload{}, err
	}

	next := *j
	v := &validationError{}
	for key, raw := range fields {
		name := strings.ToLower(key)
		setter, ok := jobSetters[name]
		if !ok {
			continue
		}
		if name == "status" && viewer.Role != models.RoleAdmin && viewer.Role != models.RoleVendor {
			return jobPayload{}, fmt.Errorf("%w: customers cannot change job status", shared.ErrForbidden)
		}
		if msg := setter(&next, raw); msg != "" {
			v.add(canonicalField(key), msg)
		}
	}
	if v.any() {
		return jobPayload{}, v
	}
	*j = next
	return m.payload(j), nil
}

// Assign hands a submitted job to an approved vendor.
func (m *Marketplace) Assign(viewer account, id, vendorID string) (jobPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return jobPayload{}, err
	}
	vendor, ok := m.accounts[vendorID]
	if !ok || vendor.Role != models.RoleVendor {
		return jobPayload{}, invalid("VendorId", "The selected vendor does not exist.")
	}
	if !vendor.Approved {
		return jobPayload{}, invalid("VendorId", "The selected vendor has not been approved.")
	}
	j.VendorID = vendor.ID
	j.Status = models.StatusAssigned
	j.AssignedAt = m.timestamp()
	j.AcceptedAt = ""
	return m.payload(j), nil
}

// Accept marks an assigned job as accepted by its vendor.
func (m *Marketplace) Accept(viewer account, id string) (jobPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return jobPayload{}, err
	}
	if j.Status != models.StatusAssigned {
		return jobPayload{}, invalid("Status", fmt.Sprintf("Only assigned jobs can be accepted; job is %s.", j.Status))
	}
	j.Status = models.StatusAccepted
	j.AcceptedAt = m.timestamp()
	return m.payload(j), nil
}

type saleRequest struct {
	ScopeOfWork    string  `json:"scopeOfWork"`
	ContractAmount float64 `json:"contractAmount"`
	WorkStartDate  string  `json:"workStartDate"`
}

// CompleteSale records the contract a vendor closed for a job.
func (m *Marketplace) CompleteSale(viewer account, id string, s saleRequest) (jobPayload, error) {
	v := &validationError{}
	if strings.TrimSpace(s.ScopeOfWork) == "" {
		v.add("ScopeOfWork", "The ScopeOfWork field is required.")
	}
	if s.ContractAmount <= 0 {
		v.add("ContractAmount", "The ContractAmount must be greater than zero.")
	}
	if v.any() {
		return jobPayload{}, v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return jobPayload{}, err
	}
	if j.VendorID == "" {
		return jobPayload{}, invalid("Status", "The job has no vendor assigned.")
	}
	amount := s.ContractAmount
	j.Status = models.StatusSale
	j.ScopeOfWork = strings.TrimSpace(s.ScopeOfWork)
	j.ContractAmount = &amount
	j.WorkStartDate = s.WorkStartDate
	return m.payload(j), nil
}

// AddNote appends a note written by the viewer.
func (m *Marketplace) AddNote(viewer account, id, content string) (notePayload, error) {
	if strings.TrimSpace(content) == "" {
		return notePayload{}, invalid("Content", "The Content field is required.")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return notePayload{}, err
	}
	n := noteRecord{ID: m.nextNote, AuthorID: viewer.ID, Content: content, CreatedAt: m.timestamp()}
	m.nextNote++
	j.Notes = append(j.Notes, n)
	return newNotePayload(j.ID, n), nil
}

func (m *Marketplace) Notes(viewer account, id string) ([]notePayload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, err := m.lookup(viewer, id)
	if err != nil {
		return nil, err
	}
	out := make([]notePayload, 0, len(j.Notes))
	for _, n := range j.Notes {
		out = append(out, newNotePayload(j.ID, n))
	}
	return out, nil
}

func validUrgency(u models.Urgency) bool {
	switch u {
	case models.UrgencyImmediate, models.UrgencyThisWeek, models.UrgencyThisMonth, models.UrgencyNoRush:
		return true
	}
	return false
}

func validStatus(s models.JobStatus) bool {
	switch s {
	case models.StatusSubmitted, models.StatusAssigned, models.StatusAccepted, models.StatusReachedOut,
		models.StatusApptSet, models.StatusSale, models.StatusFollowUp, models.StatusExpired,
		models.StatusCompleted, models.StatusInvoiced:
		return true
	}
	return false
}
