// Package export writes entries as CSV, JSON or a plain day-grouped list.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
)

// Namer resolves the display name of an entry's project.
type Namer interface {
	ProjectName(e model.TimeEntry) string
}

// Row is one exported entry with durations computed at export time.
type Row struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	ProjectID       string     `json:"projectId,omitempty"`
	Project         string     `json:"project"`
	Note            string     `json:"note,omitempty"`
	StartAt         time.Time  `json:"startAt"`
	EndAt           *time.Time `json:"endAt,omitempty"`
	PauseMinutes    int64      `json:"pauseMinutes"`
	DurationMinutes int64      `json:"durationMinutes"`
	Source          string     `json:"source"`
}

// Rows converts entries in order. Open entries are measured up to now.
func Rows(entries []model.TimeEntry, names Namer, now time.Time) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		r := Row{
			ID:              e.ID,
			Date:            timecalc.DayKey(e.StartAt),
			ProjectID:       e.Project(),
			Project:         names.ProjectName(e),
			StartAt:         e.StartAt,
			EndAt:           e.EndAt,
			PauseMinutes:    int64(timecalc.PausedDuration(e, now) / time.Minute),
			DurationMinutes: int64(math.Floor(timecalc.DurationMinutes(e, now))),
			Source:          string(e.Source),
		}
		if e.Note != nil {
			r.Note = *e.Note
		}
		rows = append(rows, r)
	}
	return rows
}

func CSV(w io.Writer, entries []model.TimeEntry, names Namer, now time.Time) error {
	if _, err := fmt.Fprintln(w, "date,project,note,start,end,pause_minutes,duration_minutes,source"); err != nil {
		return err
	}
	for _, r := range Rows(entries, names, now) {
		endStr := ""
		if r.EndAt != nil {
			endStr = r.EndAt.Format(time.RFC3339)
		}
		_, err := fmt.Fprintf(w, "%s,%s,%s,%s,%s,%d,%d,%s\n",
			csvEscape(r.Date),
			csvEscape(r.Project),
			csvEscape(r.Note),
			csvEscape(r.StartAt.Format(time.RFC3339)),
			csvEscape(endStr),
			r.PauseMinutes,
			r.DurationMinutes,
			r.Source,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func JSON(w io.Writer, entries []model.TimeEntry, names Namer, now time.Time) error {
	data, err := json.MarshalIndent(Rows(entries, names, now), "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// List prints entries grouped under a date heading, in the given order.
func List(w io.Writer, entries []model.TimeEntry, names Namer, now time.Time) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}

	var currentDay string
	for _, r := range Rows(entries, names, now) {
		if r.Date != currentDay {
			if _, err := fmt.Fprintln(w, r.Date); err != nil {
				return err
			}
			currentDay = r.Date
		}

		if _, err := fmt.Fprintln(w, Line(r)); err != nil {
			return err
		}
	}
	return nil
}

// Line renders a row as "09:00–10:30  Project  note (1h 15m)  [abcd1234]".
func Line(r Row) string {
	endStr := "ongoing"
	if r.EndAt != nil {
		endStr = r.EndAt.Local().Format("15:04")
	}
	note := ""
	if r.Note != "" {
		note = "  " + r.Note
	}
	return fmt.Sprintf("%s–%s  %s%s (%s)  [%s]",
		r.StartAt.Local().Format("15:04"), endStr, r.Project, note,
		timecalc.FormatDuration(r.DurationMinutes*60), shortID(r.ID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
