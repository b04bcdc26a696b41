package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cams-catalog/internal/catalogdb"
	"cams-catalog/internal/planner"
	"cams-catalog/internal/scrapers/cams"

	"github.com/jedib0t/go-pretty/v6/table"
)

func formatClock(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/3600, (seconds%3600)/60)
}

func formatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("01/02/2006")
}

func formatSessions(sessions []cams.Session) string {
	if len(sessions) == 0 {
		return "TBA"
	}
	parts := make([]string, len(sessions))
	for i, s := range sessions {
		parts[i] = fmt.Sprintf("%s %s-%s", s.Days, formatClock(s.StartTime), formatClock(s.EndTime))
	}
	return strings.Join(parts, ", ")
}

func formatInstructors(sessions []cams.Session) string {
	var names []string
	seen := map[string]bool{}
	for _, s := range sessions {
		if s.Instructor == "" || seen[s.Instructor] {
			continue
		}
		seen[s.Instructor] = true
		names = append(names, s.Instructor)
	}
	return strings.Join(names, "; ")
}

func writeJson(path string, value any) error {
	var out io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func readCatalogJson(path string) (catalogdb.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalogdb.Catalog{}, err
	}
	defer f.Close()
	var catalog catalogdb.Catalog
	err = json.NewDecoder(f).Decode(&catalog)
	return catalog, err
}

func renderTerms(out io.Writer, terms cams.Terms) {
	latest, _ := terms.Latest()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Label", "Id", ""})
	for _, term := range terms {
		marker := ""
		if term.Id == latest.Id {
			marker = "latest"
		}
		t.AppendRow(table.Row{term.Label, term.Id, marker})
	}
	t.Render()
}

func renderCatalog(out io.Writer, catalog catalogdb.Catalog) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("Term %s (scraped %s)", catalog.Term, catalog.ScrapedAt.Format(time.RFC1123)))
	t.AppendHeader(table.Row{"Course", "Title", "Credits", "Section", "Dates", "Meetings", "Instructors"})

	sections := 0
	for _, course := range catalog.Courses {
		name := course.Department + course.Number + course.Type
		for _, section := range course.Sections {
			t.AppendRow(table.Row{
				name,
				course.Title,
				course.Credits,
				section.Section,
				fmt.Sprintf("%s - %s", formatDate(section.StartDate), formatDate(section.EndDate)),
				formatSessions(section.Sessions),
				formatInstructors(section.Sessions),
			})
			sections++
		}
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d courses", len(catalog.Courses)), "", "", fmt.Sprintf("%d sections", sections)})
	t.Render()
}

func renderSchedules(out io.Writer, schedules []planner.Schedule, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Sections", "Meetings"})
	for i, schedule := range schedules {
		if limit > 0 && i >= limit {
			break
		}
		names := make([]string, len(schedule))
		meetings := make([]string, len(schedule))
		for j, choice := range schedule {
			names[j] = choice.String()
			meetings[j] = formatSessions(choice.Section.Sessions)
		}
		t.AppendRow(table.Row{i + 1, strings.Join(names, "\n"), strings.Join(meetings, "\n")})
		t.AppendSeparator()
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d possible schedules", len(schedules)), ""})
	t.Render()
}
