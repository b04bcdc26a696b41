package cams

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"cams-catalog/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// AuthSession is a logged in portal session. It is safe for concurrent use once
// created, the cookie jar is only written to during login.
type AuthSession struct {
	http               *resty.Client
	maxConcurrentPages int
	tel                telemetry.API
}

type firstPage struct {
	sections   []Section
	accessKey  string
	totalPages int
}

// maxTotalPages bounds the page count a results page may declare.
const maxTotalPages = 1000

var totalPagesRegex = regexp.MustCompile(`Total Pages:\s*(\d+)`)

func scrapeAccessKey(doc *goquery.Document) (string, error) {
	key, exists := doc.Find("form#OptionsForm input[name=accessKey]").First().Attr("value")
	if !exists {
		return "", parseErrorf("access key not found")
	}
	return key, nil
}

func scrapeTotalPages(doc *goquery.Document) (int, error) {
	matches := totalPagesRegex.FindAllStringSubmatch(doc.Find("#mainBody").Text(), -1)
	if len(matches) == 0 {
		return 0, parseErrorf("page count not found")
	}
	total, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0, parseErrorf("page count: %s", err.Error())
	}
	if total > maxTotalPages {
		return 0, parseErrorf("page count %d exceeds %d", total, maxTotalPages)
	}
	return max(total, 1), nil
}

func (s *AuthSession) document(res *resty.Response) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, parseErrorf("html: %s", err.Error())
	}
	return doc, nil
}

func (s *AuthSession) fetchFirstPage(ctx context.Context) (firstPage, error) {
	res, err := respOrStatusErr(
		s.http.R().
			SetContext(ctx).
			Get(endpointOffering),
	)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, fmt.Errorf("fetch: %w", err), 1)
		return firstPage{}, err
	}
	doc, err := s.document(res)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, err, 1)
		return firstPage{}, err
	}

	accessKey, err := scrapeAccessKey(doc)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, err, 1)
		return firstPage{}, err
	}
	totalPages, err := scrapeTotalPages(doc)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, err, 1)
		return firstPage{}, err
	}
	sections, err := ParseSections(doc)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, fmt.Errorf("parse: %w", err), 1)
		return firstPage{}, fmt.Errorf("page 1: %w", err)
	}

	return firstPage{
		sections:   sections,
		accessKey:  accessKey,
		totalPages: totalPages,
	}, nil
}

func (s *AuthSession) fetchPage(ctx context.Context, term, accessKey string, page int) ([]Section, error) {
	s.tel.ReportDebug(report_session_fetch_page, page)

	res, err := respOrStatusErr(
		s.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"IsPostBack":       "True",
				"page":             strconv.Itoa(page),
				"accessKey":        accessKey,
				"f_TermCalendarID": term,
				"f_Days":           "",
				"f_TimeFrom":       "",
				"f_TimeTo":         "",
				"f_Campuses":       "",
				"f_Departments":    "",
				"f_Divisions":      "",
				"TimeFrom":         "",
				"TimeTo":           "",
			}).
			Post(endpointOffering),
	)
	if err != nil {
		// siblings are cancelled once one page fails, there is no need to report those
		if ctx.Err() == nil {
			s.tel.ReportBroken(report_session_fetch_page, fmt.Errorf("fetch: %w", err), page)
		}
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	doc, err := s.document(res)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, err, page)
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	sections, err := ParseSections(doc)
	if err != nil {
		s.tel.ReportBroken(report_session_fetch_page, fmt.Errorf("parse: %w", err), page)
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return sections, nil
}

// FetchAll returns the sections of every result page for a term in page order.
// The first page is fetched on its own to learn the access key and page count,
// the remaining pages are fetched concurrently. Any failure cancels the pages
// still in flight and fails the whole fetch.
func (s *AuthSession) FetchAll(ctx context.Context, term string) ([]Section, error) {
	ctx, span := tracer.Start(ctx, "FetchAll")
	defer span.End()

	first, err := s.fetchFirstPage(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.tel.ReportCount(report_session_fetch_all, int64(first.totalPages))

	pages := make([][]Section, first.totalPages)
	pages[0] = first.sections

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrentPages)
	for page := 2; page <= first.totalPages; page++ {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			sections, err := s.fetchPage(groupCtx, term, first.accessKey, page)
			if err != nil {
				return err
			}
			pages[page-1] = sections
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var sections []Section
	for _, page := range pages {
		sections = append(sections, page...)
	}
	if sections == nil {
		sections = []Section{}
	}
	s.tel.ReportCount(report_session_sections, int64(len(sections)))
	return sections, nil
}

// Logout ends the session on the portal, the response is ignored and failures
// are only reported.
func (s *AuthSession) Logout(ctx context.Context) {
	_, err := respOrStatusErr(
		s.http.R().
			SetContext(ctx).
			Get(endpointLogout),
	)
	if err != nil {
		s.tel.ReportWarning(report_session_logout, err)
	}
}
