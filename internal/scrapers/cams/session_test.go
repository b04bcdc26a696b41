package cams

import (
	"testing"
	"time"

	"cams-catalog/internal/scrapers/cams/camstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func offeringPage(dep string, count int) []camstest.Offering {
	var offerings []camstest.Offering
	for i := 1; i <= count; i++ {
		offerings = append(offerings, camstest.Offering{
			Id:        dep + "1000 " + string(rune('0'+i)),
			Title:     dep + " course",
			Credits:   "3",
			StartDate: "01/08/2024",
			EndDate:   "05/01/2024",
			Meetings: []camstest.Meeting{
				{Instructor: "Staff", Room: "TBA", Days: "MW", Start: "09:00:00 AM", End: "09:50:00 AM"},
			},
		})
	}
	return offerings
}

func newTestPortal(pages [][]camstest.Offering) *camstest.Portal {
	return camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Terms:     testTerms,
		Pages:     pages,
	})
}

func TestFetchAllPaginates(t *testing.T) {
	portal := newTestPortal([][]camstest.Offering{
		offeringPage("ENG", 2),
		offeringPage("MAT", 3),
		offeringPage("PHY", 1),
	})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{})
	ctx := testContext(t)

	session, err := client.Login(ctx, testUsername, testPassword, testTerm)
	require.NoError(t, err)

	sections, err := session.FetchAll(ctx, testTerm)
	require.NoError(t, err)

	var departments []string
	for _, s := range sections {
		departments = append(departments, s.Id.Department)
	}
	require.Equal(t, []string{"ENG", "ENG", "MAT", "MAT", "MAT", "PHY"}, departments)

	require.Empty(t, portal.RejectedPosts())
	diff := cmp.Diff(
		[]camstest.PagePost{
			{Page: 2, AccessKey: testAccessKey, Term: testTerm},
			{Page: 3, AccessKey: testAccessKey, Term: testTerm},
		},
		portal.PagePosts(),
		cmpopts.SortSlices(func(a, b camstest.PagePost) bool { return a.Page < b.Page }),
	)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchAllSinglePage(t *testing.T) {
	portal := newTestPortal([][]camstest.Offering{offeringPage("ENG", 2)})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{})
	ctx := testContext(t)

	session, err := client.Login(ctx, testUsername, testPassword, testTerm)
	require.NoError(t, err)

	sections, err := session.FetchAll(ctx, testTerm)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Empty(t, portal.PagePosts())
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	var pages [][]camstest.Offering
	for range 7 {
		pages = append(pages, offeringPage("COP", 1))
	}
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Pages:     pages,
		PageDelay: time.Millisecond * 50,
	})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{MaxConcurrentPages: 2})
	ctx := testContext(t)

	session, err := client.Login(ctx, testUsername, testPassword, testTerm)
	require.NoError(t, err)
	sections, err := session.FetchAll(ctx, testTerm)
	require.NoError(t, err)
	require.Len(t, sections, 7)
	require.LessOrEqual(t, portal.MaxInFlight(), 2)
	require.Len(t, portal.PagePosts(), 6)
}

func TestFetchAllFailsFast(t *testing.T) {
	var pages [][]camstest.Offering
	for range 4 {
		pages = append(pages, offeringPage("COP", 1))
	}
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Pages:     pages,
		FailPage:  3,
	})
	defer portal.Close()

	client, tel := newTestClient(t, portal.URL, ClientOptions{})
	ctx := testContext(t)

	session, err := client.Login(ctx, testUsername, testPassword, testTerm)
	require.NoError(t, err)

	sections, err := session.FetchAll(ctx, testTerm)
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.Nil(t, sections)
	require.NotEmpty(t, tel.Broken())
}

func TestFetchAllCancelsSiblingPages(t *testing.T) {
	var pages [][]camstest.Offering
	for range 4 {
		pages = append(pages, offeringPage("COP", 1))
	}
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Pages:     pages,
		FailPage:  2,
		FailDelay: time.Millisecond * 100,
		PageDelay: time.Second * 5,
	})
	defer portal.Close()

	client, tel := newTestClient(t, portal.URL, ClientOptions{})
	ctx := testContext(t)

	session, err := client.Login(ctx, testUsername, testPassword, testTerm)
	require.NoError(t, err)

	start := time.Now()
	_, err = session.FetchAll(ctx, testTerm)
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.Less(t, time.Since(start), time.Second*2)

	// pages 3 and 4 were still waiting when page 2 failed
	require.Eventually(t, func() bool {
		return portal.Cancelled() == 2
	}, time.Second*2, time.Millisecond*10)

	// only the failing page is reported
	require.Len(t, tel.Broken(), 1)
}

func TestFetchAllTimeout(t *testing.T) {
	portal := camstest.NewPortal(camstest.PortalOptions{
		Username:  testUsername,
		Password:  testPassword,
		AccessKey: testAccessKey,
		Pages:     [][]camstest.Offering{offeringPage("ENG", 1), offeringPage("MAT", 1)},
		PageDelay: time.Second * 5,
	})
	defer portal.Close()

	client, _ := newTestClient(t, portal.URL, ClientOptions{Timeout: time.Millisecond * 200})
	ctx := testContext(t)

	session, err := client.Login(ctx, testUsername, testPassword, testTerm)
	require.NoError(t, err)

	_, err = session.FetchAll(ctx, testTerm)
	require.ErrorIs(t, err, ErrNetworkFailure)
}

func TestScrapeAccessKey(t *testing.T) {
	key, err := scrapeAccessKey(parseHtml(t, camstest.RenderOfferingPage(testAccessKey, 1, 1, nil)))
	require.NoError(t, err)
	require.Equal(t, testAccessKey, key)

	// present but empty is still a key
	key, err = scrapeAccessKey(parseHtml(t, camstest.RenderOfferingPage("", 1, 1, nil)))
	require.NoError(t, err)
	require.Equal(t, "", key)

	_, err = scrapeAccessKey(parseHtml(t, `<div id="mainBody"><div></div><div>Total Pages: 2<table></table></div></div>`))
	require.ErrorIs(t, err, ErrParse)
}

func TestScrapeTotalPages(t *testing.T) {
	testCases := []struct {
		contents string
		expected int
	}{
		{contents: `<div id="mainBody">Page 1. Total Pages: 12</div>`, expected: 12},
		{contents: `<div id="mainBody">Total Pages: 1 ... Total Pages: 3</div>`, expected: 3},
		{contents: `<div id="mainBody">Total Pages: 0</div>`, expected: 1},
	}
	for _, test := range testCases {
		total, err := scrapeTotalPages(parseHtml(t, test.contents))
		require.NoError(t, err)
		require.Equal(t, test.expected, total)
	}

	_, err := scrapeTotalPages(parseHtml(t, `<div id="mainBody">no pager</div>`))
	require.ErrorIs(t, err, ErrParse)

	_, err = scrapeTotalPages(parseHtml(t, `<div id="mainBody">Total Pages: 2000000000</div>`))
	require.ErrorIs(t, err, ErrParse)

	total, err := scrapeTotalPages(parseHtml(t, `<div id="mainBody">Total Pages: 1000</div>`))
	require.NoError(t, err)
	require.Equal(t, maxTotalPages, total)
}
