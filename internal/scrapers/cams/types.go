package cams

// CourseId is the decomposed form of a CAMS course identifier like `ENG1000C101`.
type CourseId struct {
	Department string `json:"department"`
	// Number may carry a trailing `C` lab marker.
	Number  string `json:"number"`
	Type    string `json:"type"`
	Section int    `json:"section"`
}

// Session is a single scheduled meeting of a section.
type Session struct {
	Instructor string `json:"instructor"`
	Room       string `json:"room"`
	// Days is a string of weekday letters like "MWF".
	Days string `json:"days"`
	// StartTime and EndTime are seconds since midnight.
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// Section is one offering of a course as it appears in the results table.
type Section struct {
	Id      CourseId `json:"id"`
	Title   string   `json:"title"`
	Credits int      `json:"credits"`
	// StartDate and EndDate are unix timestamps of UTC midnight.
	StartDate int64     `json:"startDate"`
	EndDate   int64     `json:"endDate"`
	Sessions  []Session `json:"sessions"`

	Capacity int `json:"capacity"`
	Enrolled int `json:"enrolled"`
}

// Course is every section that shares a department, number and type.
type Course struct {
	Department string          `json:"department"`
	Number     string          `json:"number"`
	Type       string          `json:"type"`
	Title      string          `json:"title"`
	Credits    int             `json:"credits"`
	Sections   []CourseSection `json:"sections"`
}

type CourseSection struct {
	Section   int       `json:"section"`
	StartDate int64     `json:"startDate"`
	EndDate   int64     `json:"endDate"`
	Sessions  []Session `json:"sessions"`
}

// Term is an academic term the portal can be queried for.
type Term struct {
	Label string `json:"label"`
	Id    string `json:"id"`
}
