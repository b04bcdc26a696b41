package cams

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func testSection(dep, number, courseType string, section int, title string) Section {
	return Section{
		Id:        CourseId{Department: dep, Number: number, Type: courseType, Section: section},
		Title:     title,
		Credits:   3,
		StartDate: 100,
		EndDate:   200,
		Sessions: []Session{
			{Instructor: title, Days: "MW", StartTime: int64(section) * 3600, EndTime: int64(section)*3600 + 3000},
		},
	}
}

func TestGroupCourses(t *testing.T) {
	sections := []Section{
		testSection("ENG", "1000C", "", 101, "Intro to Engineering"),
		testSection("MAT", "2020", "", 1, "Calculus II"),
		testSection("ENG", "1000C", "", 102, "Intro to Engineering (renamed)"),
		testSection("PHY", "2048", "L", 1, "Physics Lab"),
		testSection("PHY", "2048", "", 1, "Physics"),
		{Id: CourseId{Department: "MAT", Number: "2020", Section: 2}, Title: "Calculus II"},
	}

	courses := GroupCourses(sections)

	expected := []Course{
		{
			Department: "ENG", Number: "1000C", Title: "Intro to Engineering", Credits: 3,
			Sections: []CourseSection{
				{Section: 101, StartDate: 100, EndDate: 200, Sessions: sections[0].Sessions},
				{Section: 102, StartDate: 100, EndDate: 200, Sessions: sections[2].Sessions},
			},
		},
		{
			Department: "MAT", Number: "2020", Title: "Calculus II", Credits: 3,
			Sections: []CourseSection{
				{Section: 1, StartDate: 100, EndDate: 200, Sessions: sections[1].Sessions},
				{Section: 2, Sessions: []Session{}},
			},
		},
		{
			Department: "PHY", Number: "2048", Type: "L", Title: "Physics Lab", Credits: 3,
			Sections: []CourseSection{
				{Section: 1, StartDate: 100, EndDate: 200, Sessions: sections[3].Sessions},
			},
		},
		{
			Department: "PHY", Number: "2048", Title: "Physics", Credits: 3,
			Sections: []CourseSection{
				{Section: 1, StartDate: 100, EndDate: 200, Sessions: sections[4].Sessions},
			},
		},
	}

	diff := cmp.Diff(expected, courses)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestGroupCoursesEmpty(t *testing.T) {
	courses := GroupCourses(nil)
	require.NotNil(t, courses)
	require.Empty(t, courses)
}

func TestGroupCoursesPermutationInvariant(t *testing.T) {
	var sections []Section
	for _, dep := range []string{"ENG", "MAT", "COP"} {
		for section := 1; section <= 4; section++ {
			sections = append(sections, testSection(dep, "1000", "", section, dep))
		}
	}

	sortCourses := cmpopts.SortSlices(func(a, b Course) bool {
		return a.Department+a.Number+a.Type < b.Department+b.Number+b.Type
	})
	sortSections := cmpopts.SortSlices(func(a, b CourseSection) bool {
		return a.Section < b.Section
	})

	expected := GroupCourses(sections)
	require.Len(t, expected, 3)

	random := rand.New(rand.NewSource(7))
	for range 10 {
		shuffled := append([]Section(nil), sections...)
		random.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		diff := cmp.Diff(expected, GroupCourses(shuffled), sortCourses, sortSections)
		if diff != "" {
			t.Fatal(diff)
		}
	}
}
