package tracker

import (
	"math"
	"regexp"
	"strings"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// DefaultColors is the palette offered when creating projects.
var DefaultColors = []string{
	"#0D9488", "#2563EB", "#7C3AED", "#DB2777",
	"#EA580C", "#D97706", "#16A34A", "#64748B",
}

// ValidateProject checks the user-editable project fields.
func ValidateProject(name, color string, rate *float64) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "must not be empty")
	}
	if !colorPattern.MatchString(color) {
		return invalid("color", "%q is not a #RRGGBB color", color)
	}
	if rate != nil && (*rate < 0 || math.IsNaN(*rate) || math.IsInf(*rate, 0)) {
		return invalid("rate", "must be a non-negative number")
	}
	return nil
}

// AddProject creates a project with a trimmed name.
func (t *Tracker) AddProject(name, color string, rate *float64) (model.Project, error) {
	if err := ValidateProject(name, color, rate); err != nil {
		return model.Project{}, t.reject("add project", err)
	}
	p := model.Project{
		ID:        timecalc.NewID(),
		Name:      strings.TrimSpace(name),
		Color:     color,
		CreatedAt: t.clock(),
	}
	if rate != nil {
		r := *rate
		p.Rate = &r
	}

	t.mu.Lock()
	t.projects = append(t.projects, p)
	t.saveProjects()
	if t.pub != nil {
		t.pub.PublishProject(p)
	}
	t.mu.Unlock()

	t.logger.Printf("Created project: %s (ID: %s)", p.Name, p.ID)
	t.notify()
	return p, nil
}

// DeleteProject hard-deletes a project. Entries keep their reference, which
// then resolves to no project.
func (t *Tracker) DeleteProject(id string) error {
	t.mu.Lock()
	i := t.projectIndex(id)
	if i < 0 {
		t.mu.Unlock()
		return ErrProjectNotFound
	}
	t.projects = append(t.projects[:i], t.projects[i+1:]...)
	t.saveProjects()
	if t.pub != nil {
		t.pub.RemoveProject(id)
	}
	t.mu.Unlock()

	t.logger.Printf("Deleted project: %s", id)
	t.notify()
	return nil
}

// ArchiveProject hides or unhides a project from selection lists.
func (t *Tracker) ArchiveProject(id string, archived bool) (model.Project, error) {
	t.mu.Lock()
	i := t.projectIndex(id)
	if i < 0 {
		t.mu.Unlock()
		return model.Project{}, ErrProjectNotFound
	}
	t.projects[i].Archived = archived
	p := t.projects[i]
	t.saveProjects()
	if t.pub != nil {
		t.pub.PublishProject(p)
	}
	t.mu.Unlock()

	t.notify()
	return p, nil
}

// Projects returns all projects, archived ones included.
func (t *Tracker) Projects() []model.Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Project{}, t.projects...)
}

// ActiveProjects returns the projects offered for selection.
func (t *Tracker) ActiveProjects() []model.Project {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []model.Project{}
	for _, p := range t.projects {
		if !p.Archived {
			out = append(out, p)
		}
	}
	return out
}

// GetProject resolves a project id. Empty or dangling ids report false.
func (t *Tracker) GetProject(id string) (model.Project, bool) {
	if id == "" {
		return model.Project{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.projectIndex(id)
	if i < 0 {
		return model.Project{}, false
	}
	return t.projects[i], true
}

// FindProject resolves a project by id or case-insensitive name.
func (t *Tracker) FindProject(ref string) (model.Project, bool) {
	if p, ok := t.GetProject(ref); ok {
		return p, true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.projects {
		if strings.EqualFold(p.Name, strings.TrimSpace(ref)) {
			return p, true
		}
	}
	return model.Project{}, false
}
