package camstest

import (
	"fmt"
	"html"
	"strings"
)

type Meeting struct {
	Instructor string
	Room       string
	Days       string
	Start      string
	End        string
}

// Offering is a single course row of the results table.
type Offering struct {
	Id        string
	Title     string
	Credits   string
	StartDate string
	EndDate   string
	Capacity  string
	Enrolled  string
	// TitleAnchor renders the title inside an anchor the way the portal does
	// for courses with a syllabus.
	TitleAnchor bool
	Meetings    []Meeting
	// NoDetailRow leaves out the meeting time row entirely.
	NoDetailRow bool
}

type Term struct {
	Label string
	Id    string
}

func RenderLoginPage(terms []Term) string {
	var b strings.Builder
	b.WriteString(`<html><body><form id="loginForm"><select id="idterm" name="term">`)
	for _, t := range terms {
		fmt.Fprintf(&b, `<option value="%s">%s</option>`, html.EscapeString(t.Id), html.EscapeString(t.Label))
	}
	b.WriteString(`</select><input name="txtUsername"/><input name="txtPassword"/></form></body></html>`)
	return b.String()
}

func renderHeaderRow(b *strings.Builder, o Offering) {
	title := html.EscapeString(o.Title)
	if o.TitleAnchor {
		title = fmt.Sprintf(`<a href="#syllabus">%s</a>`, title)
	}
	fmt.Fprintf(
		b,
		`<tr class="courseInfo"><td>%s<div><input type="button" value="Book List"/></div></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
		html.EscapeString(o.Id),
		title,
		html.EscapeString(o.Credits),
		html.EscapeString(o.StartDate),
		html.EscapeString(o.EndDate),
		html.EscapeString(o.Capacity),
		html.EscapeString(o.Enrolled),
	)
}

func renderDetailRow(b *strings.Builder, o Offering) {
	b.WriteString(`<tr><td colspan="7"><table><tr><th></th><th>Instructor</th><th>Room</th><th>Days</th><th></th><th>Start</th><th>End</th><th></th><th></th></tr>`)
	for _, m := range o.Meetings {
		fmt.Fprintf(
			b,
			`<tr><td>&nbsp;</td><td>%s</td><td>%s</td><td>%s</td><td></td><td>%s</td><td>%s</td><td></td><td></td></tr>`,
			html.EscapeString(m.Instructor),
			html.EscapeString(m.Room),
			html.EscapeString(m.Days),
			html.EscapeString(m.Start),
			html.EscapeString(m.End),
		)
	}
	b.WriteString(`</table></td></tr>`)
}

// RenderOfferingPage renders a page of search results with the layout of
// cePortalOffering.asp.
func RenderOfferingPage(accessKey string, page, totalPages int, offerings []Offering) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="mainBody"><div class="filters">`)
	fmt.Fprintf(&b, `<form id="OptionsForm" method="post"><input type="hidden" name="accessKey" value="%s"/></form>`, html.EscapeString(accessKey))
	b.WriteString(`</div><div class="results">`)
	fmt.Fprintf(&b, `<div class="pager">Page %d of results. Total Pages: %d</div>`, page, totalPages)
	b.WriteString(`<table><thead><tr><th>Course</th><th>Title</th><th>Credits</th><th>Start</th><th>End</th><th>Cap</th><th>Enr</th></tr></thead><tbody>`)
	for i, o := range offerings {
		renderHeaderRow(&b, o)
		if !o.NoDetailRow {
			renderDetailRow(&b, o)
		}
		fmt.Fprintf(&b, `<tr id="BlR_%d"><td colspan="7">&nbsp;</td></tr>`, i)
	}
	b.WriteString(`</tbody></table></div></div></body></html>`)
	return b.String()
}
