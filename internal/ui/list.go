package ui

import (
	"fmt"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = jobItem{}

// jobItem wraps [models.Job] to implement [list.Item].
type jobItem struct {
	job models.Job
}

func (i jobItem) FilterValue() string {
	return strings.Join([]string{i.job.Description, i.job.Address, string(i.job.Status)}, " ")
}

func (i jobItem) Title() string {
	line, _, _ := strings.Cut(i.job.Description, "\n")
	return fmt.Sprintf("#%s %s", i.job.ID, line)
}

func (i jobItem) Description() string {
	desc := fmt.Sprintf("%s • %s", styles.status(i.job.Status), i.job.Urgency)
	if i.job.Address != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.job.Address)
	}
	return desc
}

func jobItems(jobs []models.Job) []list.Item {
	items := make([]list.Item, len(jobs))
	for i, j := range jobs {
		items[i] = jobItem{job: j}
	}
	return items
}
