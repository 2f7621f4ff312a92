package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/normalize"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/charmbracelet/log"
)

// JobService maps the job endpoints onto an [API].
type JobService struct {
	api    API
	logger *log.Logger
}

func NewJobService(api API, logger *log.Logger) *JobService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &JobService{api: api, logger: logger}
}

func jobPath(id string, rest ...string) string {
	p := "/jobs/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// GetJobs lists every job visible to the current session.
func (s *JobService) GetJobs(ctx context.Context, bypassCache bool) ([]models.Job, error) {
	raw, err := s.api.Get(ctx, "/jobs", bypassCache)
	if err != nil {
		return nil, err
	}
	v, err := decodePayload(raw, "/jobs")
	if err != nil {
		return nil, err
	}
	return normalize.Jobs(v), nil
}

// GetJob fetches a single job.
func (s *JobService) GetJob(ctx context.Context, id string) (models.Job, error) {
	return s.job(ctx, jobPath(id), func(ep string) (json.RawMessage, error) {
		return s.api.Get(ctx, ep, false)
	})
}

// CreateJob submits a new service request.
func (s *JobService) CreateJob(ctx context.Context, draft models.JobDraft) (models.Job, error) {
	if draft.Photos == nil {
		draft.Photos = []string{}
	}
	if draft.Contacts == nil {
		draft.Contacts = []models.Contact{}
	}
	if draft.Urgency == "" {
		draft.Urgency = models.UrgencyNoRush
	}
	return s.job(ctx, "/jobs", func(ep string) (json.RawMessage, error) {
		return s.api.Post(ctx, ep, draft)
	})
}

// UpdateJob applies a partial update keyed by canonical field names.
func (s *JobService) UpdateJob(ctx context.Context, id string, updates map[string]any) (models.Job, error) {
	return s.job(ctx, jobPath(id), func(ep string) (json.RawMessage, error) {
		return s.api.Put(ctx, ep, updates)
	})
}

func (s *JobService) AssignVendor(ctx context.Context, jobID, vendorID string) (models.Job, error) {
	return s.job(ctx, jobPath(jobID, "assign"), func(ep string) (json.RawMessage, error) {
		return s.api.Post(ctx, ep, map[string]string{"vendorId": vendorID})
	})
}

func (s *JobService) AcceptJob(ctx context.Context, jobID string) (models.Job, error) {
	return s.job(ctx, jobPath(jobID, "accept"), func(ep string) (json.RawMessage, error) {
		return s.api.Post(ctx, ep, map[string]any{})
	})
}

func (s *JobService) CompleteSale(ctx context.Context, jobID string, sale models.SaleData) (models.Job, error) {
	return s.job(ctx, jobPath(jobID, "complete-sale"), func(ep string) (json.RawMessage, error) {
		return s.api.Post(ctx, ep, sale)
	})
}

// AddNote attaches a free-text note to a job.
func (s *JobService) AddNote(ctx context.Context, jobID, content string) (models.JobNote, error) {
	ep := jobPath(jobID, "notes")
	raw, err := s.api.Post(ctx, ep, map[string]string{"content": content})
	if err != nil {
		return models.JobNote{}, err
	}
	v, err := decodePayload(raw, ep)
	if err != nil {
		return models.JobNote{}, err
	}
	return normalize.Note(v), nil
}

// GetNotes lists the notes of a job.
func (s *JobService) GetNotes(ctx context.Context, jobID string) ([]models.JobNote, error) {
	ep := jobPath(jobID, "notes")
	raw, err := s.api.Get(ctx, ep, false)
	if err != nil {
		return nil, err
	}
	v, err := decodePayload(raw, ep)
	if err != nil {
		return nil, err
	}
	return normalize.Notes(v), nil
}

func (s *JobService) job(ctx context.Context, endpoint string, send func(string) (json.RawMessage, error)) (models.Job, error) {
	raw, err := send(endpoint)
	if err != nil {
		return models.Job{}, err
	}
	v, err := decodePayload(raw, endpoint)
	if err != nil {
		return models.Job{}, err
	}
	if _, ok := v.(map[string]any); !ok {
		return models.Job{}, fmt.Errorf("%w: %s did not return a job", shared.ErrDecodeResponse, endpoint)
	}
	job := normalize.Job(v)
	s.logger.Debug("job response", "endpoint", endpoint, "id", job.ID, "status", job.Status)
	return job, nil
}

func decodePayload(raw json.RawMessage, endpoint string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", shared.ErrDecodeResponse, endpoint)
	}
	v, err := normalize.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrDecodeResponse, endpoint, err)
	}
	return v, nil
}
