// package formatter renders job data as CSV, Markdown, plain text and JSON for the CLI
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/models"
)

// Format names accepted by [Render] and [WriteExport].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

var csvHeaders = []string{
	"ID", "Status", "Urgency", "Customer", "Vendor", "Address", "Description",
	"Photos", "Contract Amount", "Scheduled", "Created",
}

// ExportToCSV converts jobs to CSV with one row per job. Photos are joined with ";".
func ExportToCSV(jobs []models.Job) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, job := range jobs {
		record := []string{
			job.ID,
			string(job.Status),
			string(job.Urgency),
			userName(job.Customer, job.CustomerID),
			userName(job.Vendor, job.VendorID),
			job.Address,
			job.Description,
			strings.Join(job.Photos, ";"),
			amount(job.ContractAmount),
			job.ScheduledDate,
			job.CreatedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders jobs as a Markdown report grouped under a title.
func ExportToMarkdown(jobs []models.Job, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Jobs"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Jobs**: %d\n\n", len(jobs))

	for _, job := range jobs {
		fmt.Fprintf(&buf, "## #%s %s\n\n", job.ID, firstLine(job.Description))
		fmt.Fprintf(&buf, "- **Status**: %s\n", job.Status)
		fmt.Fprintf(&buf, "- **Urgency**: %s\n", job.Urgency)
		fmt.Fprintf(&buf, "- **Address**: %s\n", job.Address)
		fmt.Fprintf(&buf, "- **Customer**: %s\n", userName(job.Customer, job.CustomerID))
		if job.VendorID != "" {
			fmt.Fprintf(&buf, "- **Vendor**: %s\n", userName(job.Vendor, job.VendorID))
		}
		if job.ContractAmount != nil {
			fmt.Fprintf(&buf, "- **Contract**: %s\n", amount(job.ContractAmount))
		}
		if len(job.Photos) > 0 {
			buf.WriteString("\n")
			for _, p := range job.Photos {
				fmt.Fprintf(&buf, "![photo](%s)\n", p)
			}
		}
		if len(job.Notes) > 0 {
			buf.WriteString("\n### Notes\n\n")
			for _, n := range job.Notes {
				fmt.Fprintf(&buf, "> %s (%s)\n\n", n.Content, n.CreatedAt)
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders jobs as a numbered plain text list.
func ExportToText(jobs []models.Job) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Jobs: %d\n\n", len(jobs))
	for i, job := range jobs {
		fmt.Fprintf(&buf, "%d. [%s] #%s %s - %s (%s)\n", i+1, job.Status, job.ID, firstLine(job.Description), job.Address, job.Urgency)
	}

	return buf.Bytes(), nil
}

// JobDetail renders every populated field of a single job.
func JobDetail(job models.Job) []byte {
	var buf bytes.Buffer

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&buf, "%-16s %s\n", label+":", value)
		}
	}
	row("Job", "#"+job.ID)
	row("Status", string(job.Status))
	row("Urgency", string(job.Urgency))
	row("Description", job.Description)
	row("Address", job.Address)
	row("Customer", userName(job.Customer, job.CustomerID))
	row("Vendor", userName(job.Vendor, job.VendorID))
	row("Contact phone", job.ContactPhone)
	row("Contact email", job.ContactEmail)
	row("Scheduled", job.ScheduledDate)
	row("Assigned", job.AssignedAt)
	row("Accepted", job.AcceptedAt)
	row("Scope of work", job.ScopeOfWork)
	row("Contract", amount(job.ContractAmount))
	row("Work starts", job.WorkStartDate)
	row("Photos", strings.Join(job.Photos, ", "))
	row("Completed", job.CompletedPhotos)
	row("Details", job.OtherDetails)
	row("Created", job.CreatedAt)

	for _, c := range job.Contacts {
		row("Contact", strings.TrimSpace(strings.Join([]string{c.Name, c.Phone, c.Email}, " ")))
	}
	if len(job.Notes) > 0 {
		buf.WriteString("\nNotes:\n")
		buf.Write(NotesText(job.Notes))
	}

	return buf.Bytes()
}

// NotesText renders notes oldest first, one per line.
func NotesText(notes []models.JobNote) []byte {
	var buf bytes.Buffer
	for _, n := range notes {
		fmt.Fprintf(&buf, "  - %s  %s\n", n.CreatedAt, n.Content)
	}
	return buf.Bytes()
}

// ToJSON marshals v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// Render dispatches to the exporter for format.
func Render(jobs []models.Job, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ExportToText(jobs)
	case FormatMarkdown, "md":
		return ExportToMarkdown(jobs, "")
	case FormatCSV:
		return ExportToCSV(jobs)
	case FormatJSON:
		return ToJSON(jobs, true)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// WriteExport renders jobs and writes them to path.
//
// Defaults to jobs.{ext} as the filename.
func WriteExport(jobs []models.Job, format, path string) (string, error) {
	data, err := Render(jobs, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "jobs." + extension(format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return "md"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

func userName(u *models.User, id string) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	return id
}

func amount(v *float64) string {
	if v == nil {
		return ""
	}
	return "$" + strconv.FormatFloat(*v, 'f', 2, 64)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
