package tracker

import (
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

// DayGroup is one bucket of the history view.
type DayGroup struct {
	Day          string            `json:"day"`
	Entries      []model.TimeEntry `json:"entries"`
	TotalMinutes float64           `json:"totalMinutes"`
}

// ProjectTotal aggregates worked time for one project. An empty ProjectID is
// the "no project" bucket, which also collects dangling references.
type ProjectTotal struct {
	ProjectID string   `json:"projectId"`
	Name      string   `json:"name"`
	Minutes   float64  `json:"minutes"`
	Amount    *float64 `json:"amount,omitempty"`
}

// TodayTotalMinutes sums the worked minutes of entries started on the current
// local day, counting open boundaries up to now.
func (t *Tracker) TodayTotalMinutes() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	today := now.Local()
	var total float64
	for _, e := range t.entries {
		if timecalc.SameDay(e.StartAt.Local(), today) {
			total += timecalc.DurationMinutes(e, now)
		}
	}
	return total
}

// GroupByDay sorts entries newest first and buckets them by local calendar
// date, most recent day first.
func (t *Tracker) GroupByDay() []DayGroup {
	entries := t.Entries()
	now := t.clock()
	SortEntries(entries)

	groups := []DayGroup{}
	index := map[string]int{}
	for _, e := range entries {
		day := timecalc.DayKey(e.StartAt)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day, Entries: []model.TimeEntry{}})
		}
		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].TotalMinutes += timecalc.DurationMinutes(e, now)
	}
	return groups
}

// EntriesInRange returns entries starting within [from, to], oldest first.
func (t *Tracker) EntriesInRange(from, to time.Time) []model.TimeEntry {
	out := []model.TimeEntry{}
	for _, e := range t.Entries() {
		if e.StartAt.Before(from) || e.StartAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

// ProjectName resolves the display name of an entry's project, "" for none.
func (t *Tracker) ProjectName(e model.TimeEntry) string {
	p, ok := t.GetProject(e.Project())
	if !ok {
		return ""
	}
	return p.Name
}

// ProjectTotals aggregates the entries in [from, to] per project, sorted by
// name with the "no project" bucket last. Amount is set for projects with a
// rate.
func (t *Tracker) ProjectTotals(from, to time.Time) []ProjectTotal {
	now := t.clock()
	totals := map[string]*ProjectTotal{}
	for _, e := range t.EntriesInRange(from, to) {
		p, ok := t.GetProject(e.Project())
		key := ""
		if ok {
			key = p.ID
		}
		pt, seen := totals[key]
		if !seen {
			pt = &ProjectTotal{ProjectID: key, Name: p.Name}
			totals[key] = pt
		}
		pt.Minutes += timecalc.DurationMinutes(e, now)
		if ok && p.Rate != nil {
			amount := *p.Rate * pt.Minutes / 60
			pt.Amount = &amount
		}
	}

	out := make([]ProjectTotal, 0, len(totals))
	for _, pt := range totals {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].ProjectID == "") != (out[j].ProjectID == "") {
			return out[j].ProjectID == ""
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
