// Package planner builds conflict free schedules out of a scraped catalog.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"cams-catalog/internal/scrapers/cams"
)

var ErrCourseNotFound = errors.New("planner: course not found")

// Choice is a single section picked for a course.
type Choice struct {
	Course  cams.Course
	Section cams.CourseSection
}

func (c Choice) String() string {
	return fmt.Sprintf("%s%s%s %d", c.Course.Department, c.Course.Number, c.Course.Type, c.Section.Section)
}

// Schedule holds one section of every wanted course.
type Schedule []Choice

func sharesDay(a, b string) bool {
	return strings.ContainsAny(a, b)
}

func sessionsConflict(a, b cams.Session) bool {
	if !sharesDay(a.Days, b.Days) {
		return false
	}
	return a.StartTime <= b.EndTime && a.EndTime >= b.StartTime
}

// Conflicts reports whether any meeting of one section overlaps a meeting of the
// other on the same day. Touching end and start times count as overlapping.
func Conflicts(a, b cams.CourseSection) bool {
	for _, x := range a.Sessions {
		for _, y := range b.Sessions {
			if sessionsConflict(x, y) {
				return true
			}
		}
	}
	return false
}

// CourseName is the department followed by the number, ex. `MAC2311`.
func CourseName(course cams.Course) string {
	return course.Department + course.Number
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

// Schedules enumerates every way to take one section of each wanted course
// without conflicts. Sections of courses that share a department and number
// but differ in type are alternatives of each other. Schedules are ordered with
// the first wanted course varying the slowest.
func Schedules(courses []cams.Course, wanted []string) ([]Schedule, error) {
	var groups [][]Choice
	var missing []string
	seen := map[string]bool{}

	for _, name := range wanted {
		name = normalizeName(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var group []Choice
		for _, course := range courses {
			if CourseName(course) != name {
				continue
			}
			for _, section := range course.Sections {
				group = append(group, Choice{Course: course, Section: section})
			}
		}
		if len(group) == 0 {
			missing = append(missing, name)
			continue
		}
		groups = append(groups, group)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, strings.Join(missing, ", "))
	}
	if len(groups) == 0 {
		return []Schedule{}, nil
	}

	out := []Schedule{}
	enumerate(groups, nil, &out)
	return out, nil
}

func enumerate(groups [][]Choice, current Schedule, out *[]Schedule) {
	if len(current) == len(groups) {
		*out = append(*out, append(Schedule(nil), current...))
		return
	}
	for _, choice := range groups[len(current)] {
		conflicting := false
		for _, picked := range current {
			if Conflicts(picked.Section, choice.Section) {
				conflicting = true
				break
			}
		}
		if conflicting {
			continue
		}
		enumerate(groups, append(current, choice), out)
	}
}
