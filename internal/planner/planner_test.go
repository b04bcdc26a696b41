package planner

import (
	"testing"

	"cams-catalog/internal/scrapers/cams"

	"github.com/stretchr/testify/require"
)

const hour = 3600

func section(n int, days string, start, end int64) cams.CourseSection {
	return cams.CourseSection{
		Section: n,
		Sessions: []cams.Session{
			{Days: days, StartTime: start * hour, EndTime: end * hour},
		},
	}
}

func TestConflicts(t *testing.T) {
	testCases := []struct {
		name     string
		a        cams.CourseSection
		b        cams.CourseSection
		expected bool
	}{
		{name: "same slot", a: section(1, "MW", 9, 10), b: section(2, "W", 9, 10), expected: true},
		{name: "different days", a: section(1, "MW", 9, 10), b: section(2, "TR", 9, 10), expected: false},
		{name: "touching", a: section(1, "MW", 9, 10), b: section(2, "M", 10, 11), expected: true},
		{name: "disjoint", a: section(1, "MW", 9, 10), b: section(2, "MW", 11, 12), expected: false},
		{name: "contained", a: section(1, "F", 8, 12), b: section(2, "F", 9, 10), expected: true},
		{name: "no sessions", a: cams.CourseSection{}, b: section(2, "MTWRF", 0, 23), expected: false},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Conflicts(test.a, test.b), test.name)
		require.Equal(t, test.expected, Conflicts(test.b, test.a), test.name)
	}
}

func TestSchedules(t *testing.T) {
	courses := []cams.Course{
		{
			Department: "MAC", Number: "2311",
			Sections: []cams.CourseSection{
				section(1, "MW", 9, 10),
				section(2, "TR", 9, 10),
			},
		},
		{
			Department: "COP", Number: "3337",
			Sections: []cams.CourseSection{
				section(1, "MW", 9, 11),
				section(2, "MW", 13, 14),
			},
		},
		{
			Department: "COP", Number: "3337", Type: "L",
			Sections: []cams.CourseSection{
				section(3, "TR", 9, 10),
			},
		},
		{
			Department: "ENC", Number: "1101",
			Sections: []cams.CourseSection{section(1, "F", 9, 10)},
		},
	}

	schedules, err := Schedules(courses, []string{"mac 2311", "COP3337"})
	require.NoError(t, err)

	var rendered [][]string
	for _, schedule := range schedules {
		var names []string
		for _, choice := range schedule {
			names = append(names, choice.String())
		}
		rendered = append(rendered, names)
	}
	require.Equal(t, [][]string{
		{"MAC2311 1", "COP3337 2"},
		{"MAC2311 1", "COP3337L 3"},
		{"MAC2311 2", "COP3337 1"},
		{"MAC2311 2", "COP3337 2"},
	}, rendered)

	_, err = Schedules(courses, []string{"MAC2311", "PHY2048"})
	require.ErrorIs(t, err, ErrCourseNotFound)

	schedules, err = Schedules(courses, nil)
	require.NoError(t, err)
	require.Empty(t, schedules)
}
