// Package catalogdb persists scraped catalogs in sqlite or libsql.
package catalogdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"cams-catalog/internal/components/telemetry"
	"cams-catalog/internal/scrapers/cams"
)

//go:embed schema.sql
var Schema string

const (
	report_store_save    = "store.save"
	report_store_courses = "store.courses"
)

var ErrCatalogNotFound = errors.New("catalogdb: no catalog stored for term")

// Catalog is every course offered in a term at the time it was scraped.
type Catalog struct {
	Term      string        `json:"term"`
	ScrapedAt time.Time     `json:"scrapedAt"`
	Courses   []cams.Course `json:"courses"`
}

type Store struct {
	db  *sql.DB
	tel telemetry.API
}

// NewStore creates the schema if it does not exist yet.
func NewStore(ctx context.Context, db *sql.DB, tel telemetry.API) (Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("catalogdb: create schema: %w", err)
	}
	return Store{
		db:  db,
		tel: telemetry.NewScopedAPI("catalogdb", tel),
	}, nil
}

func deleteTerm(ctx context.Context, tx *sql.Tx, term string) error {
	statements := []string{
		`delete from session where section_id in (
			select section.id from section join course on course.id = section.course_id
			where course.term = ?
		)`,
		`delete from section where course_id in (select id from course where term = ?)`,
		`delete from course where term = ?`,
		`delete from catalog where term = ?`,
	}
	for _, stmt := range statements {
		_, err := tx.ExecContext(ctx, stmt, term)
		if err != nil {
			return err
		}
	}
	return nil
}

// Save replaces whatever was stored for the catalog's term.
func (s Store) Save(ctx context.Context, catalog Catalog) error {
	err := s.save(ctx, catalog)
	if err != nil {
		s.tel.ReportBroken(report_store_save, err, catalog.Term)
		return err
	}
	s.tel.ReportCount(report_store_save, int64(len(catalog.Courses)))
	return nil
}

func (s Store) save(ctx context.Context, catalog Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = deleteTerm(ctx, tx, catalog.Term)
	if err != nil {
		return fmt.Errorf("delete previous catalog: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		"insert into catalog(term, scraped_at) values (?, ?)",
		catalog.Term, catalog.ScrapedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert catalog: %w", err)
	}

	for courseIdx, course := range catalog.Courses {
		res, err := tx.ExecContext(
			ctx,
			`insert into course(term, idx, department, number, type, title, credits)
			values (?, ?, ?, ?, ?, ?, ?)`,
			catalog.Term, courseIdx, course.Department, course.Number, course.Type, course.Title, course.Credits,
		)
		if err != nil {
			return fmt.Errorf("insert course %s%s: %w", course.Department, course.Number, err)
		}
		courseId, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for sectionIdx, section := range course.Sections {
			res, err := tx.ExecContext(
				ctx,
				`insert into section(course_id, idx, section, start_date, end_date)
				values (?, ?, ?, ?, ?)`,
				courseId, sectionIdx, section.Section, section.StartDate, section.EndDate,
			)
			if err != nil {
				return fmt.Errorf("insert section: %w", err)
			}
			sectionId, err := res.LastInsertId()
			if err != nil {
				return err
			}

			for sessionIdx, session := range section.Sessions {
				_, err := tx.ExecContext(
					ctx,
					`insert into session(section_id, idx, instructor, room, days, start_time, end_time)
					values (?, ?, ?, ?, ?, ?, ?)`,
					sectionId, sessionIdx, session.Instructor, session.Room, session.Days, session.StartTime, session.EndTime,
				)
				if err != nil {
					return fmt.Errorf("insert session: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}

// Catalog reads back the catalog stored for a term with the original ordering.
func (s Store) Catalog(ctx context.Context, term string) (Catalog, error) {
	catalog, err := s.catalog(ctx, term)
	if err != nil && !errors.Is(err, ErrCatalogNotFound) {
		s.tel.ReportBroken(report_store_courses, err, term)
	}
	return catalog, err
}

type sectionRow struct {
	courseIdx int
	section   cams.CourseSection
}

func (s Store) catalog(ctx context.Context, term string) (Catalog, error) {
	var scrapedAt int64
	err := s.db.QueryRowContext(ctx, "select scraped_at from catalog where term = ?", term).Scan(&scrapedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Catalog{}, fmt.Errorf("%w: %s", ErrCatalogNotFound, term)
	}
	if err != nil {
		return Catalog{}, err
	}

	courses, courseIndices, err := s.courses(ctx, term)
	if err != nil {
		return Catalog{}, err
	}
	sections, sectionIndices, err := s.sections(ctx, term, courseIndices)
	if err != nil {
		return Catalog{}, err
	}
	err = s.sessions(ctx, term, sections, sectionIndices)
	if err != nil {
		return Catalog{}, err
	}
	for _, row := range sections {
		courses[row.courseIdx].Sections = append(courses[row.courseIdx].Sections, row.section)
	}

	return Catalog{
		Term:      term,
		ScrapedAt: time.Unix(scrapedAt, 0).UTC(),
		Courses:   courses,
	}, nil
}

func (s Store) courses(ctx context.Context, term string) ([]cams.Course, map[int64]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, department, number, type, title, credits from course
		where term = ? order by idx`,
		term,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	courses := []cams.Course{}
	indices := map[int64]int{}
	for rows.Next() {
		var id int64
		course := cams.Course{Sections: []cams.CourseSection{}}
		err := rows.Scan(&id, &course.Department, &course.Number, &course.Type, &course.Title, &course.Credits)
		if err != nil {
			return nil, nil, err
		}
		indices[id] = len(courses)
		courses = append(courses, course)
	}
	return courses, indices, rows.Err()
}

func (s Store) sections(ctx context.Context, term string, courseIndices map[int64]int) ([]sectionRow, map[int64]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select section.id, section.course_id, section.section, section.start_date, section.end_date
		from section join course on course.id = section.course_id
		where course.term = ? order by course.idx, section.idx`,
		term,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var sections []sectionRow
	indices := map[int64]int{}
	for rows.Next() {
		var id, courseId int64
		section := cams.CourseSection{Sessions: []cams.Session{}}
		err := rows.Scan(&id, &courseId, &section.Section, &section.StartDate, &section.EndDate)
		if err != nil {
			return nil, nil, err
		}
		indices[id] = len(sections)
		sections = append(sections, sectionRow{
			courseIdx: courseIndices[courseId],
			section:   section,
		})
	}
	return sections, indices, rows.Err()
}

func (s Store) sessions(ctx context.Context, term string, sections []sectionRow, sectionIndices map[int64]int) error {
	rows, err := s.db.QueryContext(
		ctx,
		`select session.section_id, session.instructor, session.room, session.days, session.start_time, session.end_time
		from session
		join section on section.id = session.section_id
		join course on course.id = section.course_id
		where course.term = ? order by session.section_id, session.idx`,
		term,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sectionId int64
		var session cams.Session
		err := rows.Scan(&sectionId, &session.Instructor, &session.Room, &session.Days, &session.StartTime, &session.EndTime)
		if err != nil {
			return err
		}
		idx := sectionIndices[sectionId]
		sections[idx].section.Sessions = append(sections[idx].section.Sessions, session)
	}
	return rows.Err()
}

// Terms lists every term with a stored catalog.
func (s Store) Terms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "select term from catalog order by term")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		err := rows.Scan(&term)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}
