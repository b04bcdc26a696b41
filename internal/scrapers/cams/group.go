package cams

type courseKey struct {
	department string
	number     string
	courseType string
}

// GroupCourses collects sections into courses by department, number and type.
// Courses are returned in the order their first section was seen, the title and
// credits of a course come from that first section.
func GroupCourses(sections []Section) []Course {
	indices := map[courseKey]int{}
	courses := []Course{}

	for _, s := range sections {
		key := courseKey{
			department: s.Id.Department,
			number:     s.Id.Number,
			courseType: s.Id.Type,
		}
		idx, ok := indices[key]
		if !ok {
			idx = len(courses)
			indices[key] = idx
			courses = append(courses, Course{
				Department: s.Id.Department,
				Number:     s.Id.Number,
				Type:       s.Id.Type,
				Title:      s.Title,
				Credits:    s.Credits,
				Sections:   []CourseSection{},
			})
		}

		sessions := s.Sessions
		if sessions == nil {
			sessions = []Session{}
		}
		courses[idx].Sections = append(courses[idx].Sections, CourseSection{
			Section:   s.Id.Section,
			StartDate: s.StartDate,
			EndDate:   s.EndDate,
			Sessions:  sessions,
		})
	}

	return courses
}
