package cams

import (
	"context"
	"time"
)

const logoutTimeout = time.Second * 10

// ScrapeCourses logs in, fetches every section offered in a term and groups
// them into courses. The session is logged out once all requests have settled,
// even when the scrape failed or ctx was cancelled.
func (c *Client) ScrapeCourses(ctx context.Context, username, password, term string) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "ScrapeCourses")
	defer span.End()

	session, err := c.Login(ctx, username, password, term)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		session.Logout(logoutCtx)
	}()

	sections, err := session.FetchAll(ctx, term)
	if err != nil {
		c.tel.ReportBroken(report_client_scrape, err, term)
		span.RecordError(err)
		return nil, err
	}
	return GroupCourses(sections), nil
}
