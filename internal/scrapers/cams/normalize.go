package cams

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "3:04:05 PM"
)

// ParseDate converts a `MM/DD/YYYY` date into the unix timestamp of its UTC midnight.
func ParseDate(value string) (int64, error) {
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return 0, parseErrorf("date %q: %s", value, err.Error())
	}
	return date.Unix(), nil
}

// ParseTime converts a `HH:MM:SS AM/PM` time of day into seconds since midnight.
func ParseTime(value string) (int64, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, parseErrorf("time %q: %s", value, err.Error())
	}
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// the lab marker `C` is matched greedily as part of the number, so a type that
// starts with `C` right after the number cannot be told apart from a lab section.
var courseIdRegex = regexp.MustCompile(`^(\w{3})(\w{4}C?)(\D+)?(\d+)?`)

// ParseCourseId decomposes an identifier like `ENG1000C101` into its parts, the section
// is 1 when the identifier does not end in digits.
func ParseCourseId(value string) (CourseId, error) {
	value = strings.TrimSpace(value)
	groups := courseIdRegex.FindStringSubmatch(value)
	if groups == nil {
		return CourseId{}, parseErrorf("course identifier %q", value)
	}

	section := 1
	if groups[4] != "" {
		var err error
		section, err = strconv.Atoi(groups[4])
		if err != nil {
			return CourseId{}, parseErrorf("course identifier %q: section: %s", value, err.Error())
		}
	}

	return CourseId{
		Department: groups[1],
		Number:     groups[2],
		Type:       strings.TrimSpace(groups[3]),
		Section:    section,
	}, nil
}
