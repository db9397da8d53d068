package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Genre is read-only reference data.
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Language is read-only reference data.
type Language struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Movie is a catalog entry together with its genre and language.
type Movie struct {
	ID          int64    `json:"id" db:"id"`
	Title       string   `json:"title" db:"title"`
	GenreID     int64    `json:"genre_id" db:"genre_id"`
	LanguageID  int64    `json:"language_id" db:"language_id"`
	OscarCount  int      `json:"oscar_count" db:"oscar_count"`
	ReleaseDate Date     `json:"release_date" db:"release_date"`
	Genre       Genre    `json:"genre" db:"genre"`
	Language    Language `json:"language" db:"language"`
}

// CreateMovieRequest is the body of POST /movies.
type CreateMovieRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	GenreID     int64  `json:"genre_id" validate:"required,gt=0"`
	LanguageID  int64  `json:"language_id" validate:"required,gt=0"`
	OscarCount  int    `json:"oscar_count" validate:"gte=0"`
	ReleaseDate *Date  `json:"release_date" validate:"required"`
}

// NewMovie builds the movie to store from a validated request.
func (r CreateMovieRequest) NewMovie() *Movie {
	m := &Movie{
		Title:      r.Title,
		GenreID:    r.GenreID,
		LanguageID: r.LanguageID,
		OscarCount: r.OscarCount,
	}
	if r.ReleaseDate != nil {
		m.ReleaseDate = *r.ReleaseDate
	}
	return m
}

// UpdateMovieRequest is the body of PUT /movies/{id}. Nil fields are left
// unchanged.
type UpdateMovieRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	GenreID     *int64  `json:"genre_id,omitempty" validate:"omitempty,gt=0"`
	LanguageID  *int64  `json:"language_id,omitempty" validate:"omitempty,gt=0"`
	OscarCount  *int    `json:"oscar_count,omitempty" validate:"omitempty,gte=0"`
	ReleaseDate *Date   `json:"release_date,omitempty"`
}

// UnmarshalJSON reads the patch. An empty or null release_date leaves the
// date unset.
func (r *UpdateMovieRequest) UnmarshalJSON(data []byte) error {
	type Alias UpdateMovieRequest
	aux := struct {
		*Alias
		ReleaseDate json.RawMessage `json:"release_date"`
	}{Alias: (*Alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ReleaseDate)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		r.ReleaseDate = nil
		return nil
	}
	var d Date
	if err := json.Unmarshal(raw, &d); err != nil {
		return err
	}
	r.ReleaseDate = &d
	return nil
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateMovieRequest) IsEmpty() bool {
	return r.Title == nil && r.GenreID == nil && r.LanguageID == nil &&
		r.OscarCount == nil && r.ReleaseDate == nil
}

// Apply copies the present fields onto m.
func (r UpdateMovieRequest) Apply(m *Movie) {
	if r.Title != nil {
		m.Title = *r.Title
	}
	if r.GenreID != nil {
		m.GenreID = *r.GenreID
	}
	if r.LanguageID != nil {
		m.LanguageID = *r.LanguageID
	}
	if r.OscarCount != nil {
		m.OscarCount = *r.OscarCount
	}
	if r.ReleaseDate != nil {
		m.ReleaseDate = *r.ReleaseDate
	}
}

// NewDate returns the calendar date of t in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}
