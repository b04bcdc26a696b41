package cams

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"cams-catalog/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	headerRowClass    = "courseInfo"
	fillerRowIdPrefix = "BlR_"

	headerCellCount  = 7
	sessionCellCount = 9
)

type rowKind int

const (
	// rowHeader starts a new section.
	rowHeader rowKind = iota
	// rowFiller is a blank spacer row.
	rowFiller
	// rowDetail holds a nested table of meeting times for the current section.
	rowDetail
)

type classifiedRow struct {
	kind rowKind
	sel  *goquery.Selection
}

func classifyRow(row *goquery.Selection) rowKind {
	if row.HasClass(headerRowClass) {
		return rowHeader
	}
	if strings.HasPrefix(row.AttrOr("id", ""), fillerRowIdPrefix) {
		return rowFiller
	}
	return rowDetail
}

// classifyRows lazily yields the rows of the results table in document order.
func classifyRows(rows *goquery.Selection) iter.Seq[classifiedRow] {
	return func(yield func(classifiedRow) bool) {
		for i := range rows.Length() {
			row := rows.Eq(i)
			if !yield(classifiedRow{kind: classifyRow(row), sel: row}) {
				return
			}
		}
	}
}

// parseState is the accumulator of the row reducer, current is nil when no section
// is being built.
type parseState struct {
	current  *Section
	sections []Section
}

func (s parseState) flush() parseState {
	if s.current != nil {
		s.sections = append(s.sections, *s.current)
		s.current = nil
	}
	return s
}

func step(state parseState, row classifiedRow) (parseState, error) {
	switch row.kind {
	case rowHeader:
		section, err := parseHeaderRow(row.sel)
		if err != nil {
			return state, err
		}
		state = state.flush()
		state.current = &section
		return state, nil
	case rowFiller:
		return state, nil
	default:
		sessions, err := parseDetailRow(row.sel)
		if err != nil {
			return state, err
		}
		if len(sessions) == 0 {
			return state, nil
		}
		if state.current == nil {
			return state, parseErrorf("meeting times found before any course row")
		}
		current := *state.current
		current.Sessions = append(current.Sessions, sessions...)
		state.current = &current
		return state, nil
	}
}

// ParseSections reads every section out of the results table of an offering page.
func ParseSections(doc *goquery.Document) ([]Section, error) {
	table := doc.Find("#mainBody > div:nth-of-type(2) > table").First()
	if table.Length() == 0 {
		return nil, parseErrorf("results table not found")
	}

	state := parseState{}
	var err error
	for row := range classifyRows(tableRows(table)) {
		state, err = step(state, row)
		if err != nil {
			return nil, err
		}
	}
	state = state.flush()

	if state.sections == nil {
		return []Section{}, nil
	}
	return state.sections, nil
}

// tableRows returns the direct rows of a table, the html parser moves rows
// that are not inside a thead or tfoot into an implicit tbody.
func tableRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
}

func ownText(cell *goquery.Selection) string {
	return htmlutil.Clean(htmlutil.GetLeadingText(cell.Get(0)))
}

// cellText is the text before the first child element of a cell, so the book list
// button under a course identifier is left out. Cells that only contain elements
// read as all of their text.
func cellText(cell *goquery.Selection) string {
	if text := ownText(cell); text != "" {
		return text
	}
	return htmlutil.Clean(htmlutil.GetText(cell.Get(0)))
}

// titleText prefers the plain text of the cell, then the text of an anchor
// inside it, then all the text of the cell.
func titleText(cell *goquery.Selection) string {
	if text := ownText(cell); text != "" {
		return text
	}
	if text := htmlutil.Clean(cell.Find("a").First().Text()); text != "" {
		return text
	}
	return htmlutil.Clean(htmlutil.GetText(cell.Get(0)))
}

var digitsRegex = regexp.MustCompile(`^\d+$`)

// parseCount reads capacity and enrollment cells, which are informational only
// so anything that is not a number reads as 0.
func parseCount(text string) int {
	if !digitsRegex.MatchString(text) {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return n
}

func parseHeaderRow(row *goquery.Selection) (Section, error) {
	cells := row.ChildrenFiltered("td")
	if cells.Length() != headerCellCount {
		return Section{}, parseErrorf("course row has %d cells, expected %d", cells.Length(), headerCellCount)
	}

	id, err := ParseCourseId(cellText(cells.Eq(0)))
	if err != nil {
		return Section{}, err
	}

	creditsText := cellText(cells.Eq(2))
	credits, err := strconv.Atoi(creditsText)
	if err != nil || credits < 0 {
		return Section{}, parseErrorf("course %q: credits %q", cellText(cells.Eq(0)), creditsText)
	}

	startDate, err := ParseDate(cellText(cells.Eq(3)))
	if err != nil {
		return Section{}, err
	}
	endDate, err := ParseDate(cellText(cells.Eq(4)))
	if err != nil {
		return Section{}, err
	}

	return Section{
		Id:        id,
		Title:     titleText(cells.Eq(1)),
		Credits:   credits,
		StartDate: startDate,
		EndDate:   endDate,
		Sessions:  []Session{},
		Capacity:  parseCount(cellText(cells.Eq(5))),
		Enrolled:  parseCount(cellText(cells.Eq(6))),
	}, nil
}

func parseDetailRow(row *goquery.Selection) ([]Session, error) {
	nested := row.ChildrenFiltered("td").ChildrenFiltered("table")
	var sessions []Session
	var err error
	rows := nested.ChildrenFiltered("thead, tbody").ChildrenFiltered("tr")
	if rows.Length() < 2 {
		return nil, nil
	}
	// the first row of the meeting table is its own header
	rows.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, meetingRow *goquery.Selection) bool {
		var session Session
		session, err = parseSessionRow(meetingRow.ChildrenFiltered("td"))
		if err != nil {
			return false
		}
		sessions = append(sessions, session)
		return true
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func parseSessionRow(cells *goquery.Selection) (Session, error) {
	if cells.Length() != sessionCellCount {
		return Session{}, parseErrorf("meeting row has %d cells, expected %d", cells.Length(), sessionCellCount)
	}
	start, err := ParseTime(cellText(cells.Eq(5)))
	if err != nil {
		return Session{}, err
	}
	end, err := ParseTime(cellText(cells.Eq(6)))
	if err != nil {
		return Session{}, err
	}
	return Session{
		Instructor: cellText(cells.Eq(1)),
		Room:       cellText(cells.Eq(2)),
		Days:       cellText(cells.Eq(3)),
		StartTime:  start,
		EndTime:    end,
	}, nil
}
