package model

// ContentSnapshot is a complete point-in-time copy of the catalog. Snapshots
// are immutable once published and replaced wholesale on every catalog change;
// consumers that need stability across changes (quiz sessions) copy what they
// keep at construction time and never read a newer snapshot.
type ContentSnapshot struct {
	Courses   []Course
	Questions []Question
}

// CourseByID returns the course with the given id, or nil. A nil result for a
// question's CourseID is a dangling reference and is legal.
func (s *ContentSnapshot) CourseByID(id string) *Course {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return &s.Courses[i]
		}
	}
	return nil
}

// QuestionsForCourse returns the questions referencing the given course id.
func (s *ContentSnapshot) QuestionsForCourse(courseID string) []Question {
	var out []Question
	for _, q := range s.Questions {
		if q.CourseID == courseID {
			out = append(out, q)
		}
	}
	return out
}
