package cams

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"cams-catalog/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

// Terms are the terms offered by the portal in the order they are listed.
type Terms []Term

// Lookup finds the id of a term by its exact label.
func (t Terms) Lookup(label string) (string, bool) {
	for _, term := range t {
		if term.Label == label {
			return term.Id, true
		}
	}
	return "", false
}

const minTermSimilarity = 0.85

// Match finds the term with the label most similar to the given one, ignoring
// case. Labels that are not similar enough do not match anything.
func (t Terms) Match(label string) (Term, bool) {
	if id, ok := t.Lookup(label); ok {
		return Term{Label: label, Id: id}, true
	}

	target := strings.ToLower(strings.TrimSpace(label))
	var best Term
	bestScore := 0.0
	for _, term := range t {
		score := matchr.JaroWinkler(target, strings.ToLower(term.Label), false)
		if score > bestScore {
			best = term
			bestScore = score
		}
	}
	if bestScore < minTermSimilarity {
		return Term{}, false
	}
	return best, true
}

// compareIds compares ids numerically when both are integers and lexically otherwise.
func compareIds(a, b string) int {
	x, okA := new(big.Int).SetString(a, 10)
	y, okB := new(big.Int).SetString(b, 10)
	if okA && okB {
		return x.Cmp(y)
	}
	return strings.Compare(a, b)
}

// Latest returns the term with the greatest id, the portal gives newer terms
// greater ids.
func (t Terms) Latest() (Term, bool) {
	if len(t) == 0 {
		return Term{}, false
	}
	latest := t[0]
	for _, term := range t[1:] {
		if compareIds(term.Id, latest.Id) > 0 {
			latest = term
		}
	}
	return latest, true
}

func parseTerms(doc *goquery.Document) (Terms, error) {
	terms := Terms{}
	doc.Find("#idterm option").Each(func(_ int, option *goquery.Selection) {
		id, exists := option.Attr("value")
		if !exists || strings.TrimSpace(id) == "" {
			return
		}
		terms = append(terms, Term{
			Label: htmlutil.Clean(option.Text()),
			Id:    strings.TrimSpace(id),
		})
	})
	if len(terms) == 0 {
		return nil, parseErrorf("no terms found")
	}
	return terms, nil
}

// FetchTerms lists the terms on the login page, it does not require a session.
func (c *Client) FetchTerms(ctx context.Context) (Terms, error) {
	ctx, span := tracer.Start(ctx, "FetchTerms")
	defer span.End()

	httpClient, err := c.newHttpClient()
	if err != nil {
		return nil, err
	}
	res, err := respOrStatusErr(
		httpClient.R().
			SetContext(ctx).
			Get(endpointTerms),
	)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_terms, fmt.Errorf("fetch: %w", err))
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_terms, fmt.Errorf("parse: %w", err))
		return nil, parseErrorf("html: %s", err.Error())
	}
	terms, err := parseTerms(doc)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_terms, err)
		return nil, err
	}
	return terms, nil
}

// FetchLatestTerm returns the id of the newest term.
func (c *Client) FetchLatestTerm(ctx context.Context) (string, error) {
	terms, err := c.FetchTerms(ctx)
	if err != nil {
		return "", err
	}
	latest, _ := terms.Latest()
	return latest.Id, nil
}
