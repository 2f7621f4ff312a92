package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/formatter"
	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/urfave/cli/v3"
)

var urgencies = []models.Urgency{
	models.UrgencyImmediate,
	models.UrgencyThisWeek,
	models.UrgencyThisMonth,
	models.UrgencyNoRush,
}

func parseUrgency(name string) (models.Urgency, error) {
	for _, u := range urgencies {
		if strings.EqualFold(name, string(u)) {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: unknown urgency %q", shared.ErrInvalidArgument, name)
}

// parseAssignments turns key=value pairs into an update map. Values that parse
// as JSON keep their JSON type; anything else is a string.
func parseAssignments(pairs []string) (map[string]any, error) {
	updates := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", shared.ErrInvalidArgument, pair)
		}

		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		updates[key] = v
	}
	return updates, nil
}

// jobID reads the required id argument.
func jobID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}
	return strings.TrimPrefix(id, "#"), nil
}

// loaded signs in and fills the job store so mutations splice into the full collection.
func (r *Runner) loaded(ctx context.Context, refresh bool) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}
	if err := r.jobs.LoadJobs(ctx, refresh); err != nil {
		if len(r.jobs.Jobs()) == 0 {
			return fmt.Errorf("failed to load jobs: %w", err)
		}
		r.logger.Warn("showing saved jobs, server unavailable", "error", err)
	}
	return nil
}

func (r *Runner) writeJob(cmd *cli.Command, job models.Job) error {
	if cmd.Bool("json") {
		return r.writeJSON(job, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.JobDetail(job))
}

// ListJobs prints the jobs visible to the signed-in user.
func (r *Runner) ListJobs(ctx context.Context, cmd *cli.Command) error {
	if err := r.loaded(ctx, cmd.Bool("refresh")); err != nil {
		return err
	}

	jobs := r.jobs.Jobs()
	if status := cmd.String("status"); status != "" {
		filtered := jobs[:0]
		for _, j := range jobs {
			if strings.EqualFold(string(j.Status), status) {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(jobs, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("exported jobs", "path", written, "count", len(jobs))
		return r.writePlain("✓ Exported %d jobs to %s\n", len(jobs), written)
	}

	if format == formatter.FormatJSON {
		return r.writeJSON(jobs, cmd.Bool("pretty"))
	}
	data, err := formatter.Render(jobs, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// GetJob fetches one job from the server.
func (r *Runner) GetJob(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	job, err := r.jobsAPI.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch job %s: %w", id, err)
	}
	if cmd.Bool("notes") {
		notes, err := r.jobs.GetNotes(ctx, id)
		if err != nil {
			r.logger.Warn("failed to fetch notes", "job", id, "error", err)
		} else {
			job.Notes = notes
		}
	}
	return r.writeJob(cmd, job)
}

// CreateJob submits a new service request.
func (r *Runner) CreateJob(ctx context.Context, cmd *cli.Command) error {
	urgency, err := parseUrgency(cmd.String("urgency"))
	if err != nil {
		return err
	}
	if err := r.loaded(ctx, false); err != nil {
		return err
	}

	job, err := r.jobs.AddJob(ctx, models.JobDraft{
		CustomerID:    cmd.String("customer"),
		Address:       cmd.String("address"),
		ContactPhone:  cmd.String("phone"),
		ContactEmail:  cmd.String("email"),
		Contacts:      []models.Contact{},
		Description:   cmd.String("description"),
		Photos:        append([]string{}, cmd.StringSlice("photo")...),
		Urgency:       urgency,
		OtherDetails:  cmd.String("details"),
		ScheduledDate: cmd.String("scheduled"),
	})
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Info("created job", "id", job.ID)
	return r.writeJob(cmd, job)
}

// UpdateJob applies --set key=value fields to a job.
func (r *Runner) UpdateJob(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	updates, err := parseAssignments(cmd.StringSlice("set"))
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: at least one --set key=value", shared.ErrMissingArgument)
	}
	if err := r.loaded(ctx, false); err != nil {
		return err
	}

	job, err := r.jobs.UpdateJob(ctx, id, updates)
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", id, err)
	}
	return r.writeJob(cmd, job)
}

// AssignJob assigns a vendor to a job.
func (r *Runner) AssignJob(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	if err := r.loaded(ctx, false); err != nil {
		return err
	}

	job, err := r.jobs.AssignVendor(ctx, id, cmd.String("vendor"))
	if err != nil {
		return fmt.Errorf("failed to assign job %s: %w", id, err)
	}
	return r.writeJob(cmd, job)
}

// AcceptJob accepts an assigned job as the signed-in vendor.
func (r *Runner) AcceptJob(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	if err := r.loaded(ctx, false); err != nil {
		return err
	}

	job, err := r.jobs.AcceptJob(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to accept job %s: %w", id, err)
	}
	return r.writeJob(cmd, job)
}

// CompleteSale records the sale for a job.
func (r *Runner) CompleteSale(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	if cmd.Float("amount") <= 0 {
		return fmt.Errorf("%w: --amount must be positive", shared.ErrInvalidArgument)
	}
	if err := r.loaded(ctx, false); err != nil {
		return err
	}

	job, err := r.jobs.CompleteSale(ctx, id, models.SaleData{
		ScopeOfWork:    cmd.String("scope"),
		ContractAmount: cmd.Float("amount"),
		WorkStartDate:  cmd.String("start"),
	})
	if err != nil {
		return fmt.Errorf("failed to complete sale for job %s: %w", id, err)
	}
	return r.writeJob(cmd, job)
}

// ListNotes prints the notes on a job.
func (r *Runner) ListNotes(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	notes, err := r.jobs.GetNotes(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch notes for job %s: %w", id, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(notes, cmd.Bool("pretty"))
	}
	if len(notes) == 0 {
		return r.writePlain("No notes on job #%s\n", id)
	}
	return r.writeBytes(formatter.NotesText(notes))
}

// AddNote attaches a note to a job.
func (r *Runner) AddNote(ctx context.Context, cmd *cli.Command) error {
	id, err := jobID(cmd)
	if err != nil {
		return err
	}
	content := strings.TrimSpace(cmd.String("content"))
	if content == "" {
		return fmt.Errorf("%w: --content", shared.ErrMissingArgument)
	}
	if err := r.loaded(ctx, false); err != nil {
		return err
	}

	note, err := r.jobs.AddNote(ctx, id, content)
	if err != nil {
		return fmt.Errorf("failed to add note to job %s: %w", id, err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(note, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Added note %s to job #%s\n", note.ID, id)
}

func jobOutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func idArgument() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "List and manage service requests",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List jobs visible to the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "refresh",
						Aliases: []string{"r"},
						Usage:   "Skip the saved snapshot and the response cache",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to a file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show jobs with this status",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.ListJobs,
			},
			{
				Name:      "get",
				Usage:     "Show one job",
				Arguments: idArgument(),
				Flags: append(jobOutputFlags(), &cli.BoolFlag{
					Name:  "notes",
					Usage: "Include notes",
				}),
				Action: r.GetJob,
			},
			{
				Name:  "create",
				Usage: "Submit a new service request",
				Flags: append(jobOutputFlags(),
					&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Job site address", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "What needs doing", Required: true},
					&cli.StringFlag{Name: "urgency", Aliases: []string{"u"}, Usage: "Immediate, This week, This month or No rush", Value: string(models.UrgencyNoRush)},
					&cli.StringFlag{Name: "phone", Usage: "Contact phone"},
					&cli.StringFlag{Name: "email", Usage: "Contact email"},
					&cli.StringSliceFlag{Name: "photo", Usage: "Photo URL (repeatable)"},
					&cli.StringFlag{Name: "details", Usage: "Other details"},
					&cli.StringFlag{Name: "scheduled", Usage: "Preferred date"},
					&cli.StringFlag{Name: "customer", Usage: "Customer id (admins only)"},
				),
				Action: r.CreateJob,
			},
			{
				Name:      "update",
				Usage:     "Change job fields",
				Arguments: idArgument(),
				Flags: append(jobOutputFlags(), &cli.StringSliceFlag{
					Name:     "set",
					Aliases:  []string{"s"},
					Usage:    "Field assignment key=value (repeatable, values may be JSON)",
					Required: true,
				}),
				Action: r.UpdateJob,
			},
			{
				Name:      "assign",
				Usage:     "Assign a vendor to a job (admin)",
				Arguments: idArgument(),
				Flags: append(jobOutputFlags(), &cli.StringFlag{
					Name:     "vendor",
					Aliases:  []string{"v"},
					Usage:    "Vendor id",
					Required: true,
				}),
				Action: r.AssignJob,
			},
			{
				Name:      "accept",
				Usage:     "Accept an assigned job (vendor)",
				Arguments: idArgument(),
				Flags:     jobOutputFlags(),
				Action:    r.AcceptJob,
			},
			{
				Name:      "complete-sale",
				Usage:     "Record a sale for a job",
				Arguments: idArgument(),
				Flags: append(jobOutputFlags(),
					&cli.StringFlag{Name: "scope", Usage: "Scope of work", Required: true},
					&cli.FloatFlag{Name: "amount", Usage: "Contract amount", Required: true},
					&cli.StringFlag{Name: "start", Usage: "Work start date"},
				),
				Action: r.CompleteSale,
			},
			{
				Name:      "notes",
				Usage:     "List notes on a job",
				Arguments: idArgument(),
				Flags:     jobOutputFlags(),
				Action:    r.ListNotes,
			},
			{
				Name:      "add-note",
				Usage:     "Add a note to a job",
				Arguments: idArgument(),
				Flags: append(jobOutputFlags(), &cli.StringFlag{
					Name:     "content",
					Aliases:  []string{"m"},
					Usage:    "Note text",
					Required: true,
				}),
				Action: r.AddNote,
			},
		},
	}
}
