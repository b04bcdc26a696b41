package cams

import (
	"context"
	"testing"
	"time"

	"cams-catalog/internal/scrapers/cams/camstest"

	"github.com/stretchr/testify/require"
)

func TestScrapeCourses(t *testing.T) {
	portal := newTestPortal([][]camstest.Offering{
		testOfferings,
		{
			{
				Id:        "ENG1000C102",
				Title:     "Intro to Engineering",
				Credits:   "3",
				StartDate: "01/08/2024",
				EndDate:   "05/01/2024",
				Meetings: []camstest.Meeting{
					{Instructor: "Hopper, Grace", Room: "BARC 1235", Days: "TR", Start: "02:00:00 PM", End: "03:15:00 PM"},
				},
			},
		},
	})
	defer portal.Close()

	client, tel := newTestClient(t, portal.URL, ClientOptions{})

	courses, err := client.ScrapeCourses(testContext(t), testUsername, testPassword, testTerm)
	require.NoError(t, err)
	require.Len(t, courses, 3)

	eng := courses[0]
	require.Equal(t, "ENG", eng.Department)
	require.Equal(t, "1000C", eng.Number)
	require.Len(t, eng.Sections, 2)
	require.Equal(t, 101, eng.Sections[0].Section)
	require.Equal(t, 102, eng.Sections[1].Section)
	require.Equal(t, int64(50400), eng.Sections[1].Sessions[0].StartTime)

	require.Equal(t, "MAT", courses[1].Department)
	require.Empty(t, courses[1].Sections[0].Sessions)
	require.Equal(t, "GEN", courses[2].Department)
	require.Len(t, courses[2].Sections[0].Sessions, 2)

	require.Equal(t, 1, portal.Logouts())
	require.Empty(t, tel.Broken())

	sections, ok := tel.Count("cams_scraper: " + report_session_sections)
	require.True(t, ok)
	require.Equal(t, int64(4), sections)
}

func TestScrapeCoursesLogsOutAfterFailure(t *testing.T) {
	var pages [][]camstest.Offering
	for range 3 {
		pages = append(pages, offeringPage("COP", 1))
	}
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Pages:     pages,
		FailPage:  2,
	})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{})

	courses, err := client.ScrapeCourses(testContext(t), testUsername, testPassword, testTerm)
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.Nil(t, courses)
	require.Equal(t, 1, portal.Logouts())
}

func TestScrapeCoursesLogsOutAfterCancel(t *testing.T) {
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Pages:     [][]camstest.Offering{offeringPage("ENG", 1), offeringPage("MAT", 1)},
		PageDelay: time.Second * 3,
	})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{})

	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()
	time.AfterFunc(time.Millisecond*200, cancel)

	_, err := client.ScrapeCourses(ctx, testUsername, testPassword, testTerm)
	require.Error(t, err)
	require.Equal(t, 1, portal.Logouts())
}

func TestScrapeCoursesBadCredentials(t *testing.T) {
	portal := newTestPortal(nil)
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{})

	_, err := client.ScrapeCourses(testContext(t), testUsername, "nope", testTerm)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 0, portal.Logouts())
}
