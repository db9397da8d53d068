package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2010-07-16", want: "2010-07-16"},
		{in: "2010-07-16T00:00:00Z", want: "2010-07-16"},
		{in: "2010-07-16T22:30:00-03:00", want: "2010-07-17"},
		{in: "16/07/2010", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) expected error, got %s", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var req CreateMovieRequest
	body := `{"title":"Inception","genre_id":1,"language_id":2,"oscar_count":4,"release_date":"2010-07-16"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.ReleaseDate == nil || !req.ReleaseDate.Time().Equal(time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("release date = %v", req.ReleaseDate)
	}

	out, err := json.Marshal(req.NewMovie())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal movie: %v", err)
	}
	if decoded["release_date"] != "2010-07-16" {
		t.Errorf("release_date = %v, want 2010-07-16", decoded["release_date"])
	}

	if err := json.Unmarshal([]byte(`{"release_date":12}`), &req); err == nil {
		t.Error("expected error for numeric release_date")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if d.String() != "1999-03-31" {
		t.Errorf("got %s", d)
	}
	if err := d.Scan([]byte("2001-01-02")); err != nil || d.String() != "2001-01-02" {
		t.Errorf("scan bytes: %s, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestUpdateMovieRequestApply(t *testing.T) {
	title := "Dune"
	oscars := 6
	req := UpdateMovieRequest{Title: &title, OscarCount: &oscars}
	if req.IsEmpty() {
		t.Fatal("request with fields reported empty")
	}
	m := &Movie{ID: 1, Title: "dune", GenreID: 3, OscarCount: 0, ReleaseDate: NewDate(2021, 9, 3)}
	req.Apply(m)
	if m.Title != "Dune" || m.OscarCount != 6 || m.GenreID != 3 || m.ReleaseDate.String() != "2021-09-03" {
		t.Errorf("unexpected movie after apply: %+v", m)
	}
	if !(UpdateMovieRequest{}).IsEmpty() {
		t.Error("zero request should be empty")
	}
}

func TestUpdateMovieRequestReleaseDate(t *testing.T) {
	tests := map[string]struct {
		body    string
		want    string
		wantErr bool
	}{
		"absent":       {body: `{"title":"Dune"}`},
		"null":         {body: `{"release_date":null}`},
		"empty string": {body: `{"release_date":""}`},
		"date":         {body: `{"release_date":"2021-09-03"}`, want: "2021-09-03"},
		"rfc3339":      {body: `{"release_date":"2021-09-03T22:00:00-03:00"}`, want: "2021-09-04"},
		"bad date":     {body: `{"release_date":"soon"}`, wantErr: true},
		"number":       {body: `{"release_date":20210903}`, wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var req UpdateMovieRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case tt.want == "" && req.ReleaseDate != nil:
				t.Errorf("release date = %s, want unset", req.ReleaseDate)
			case tt.want != "" && (req.ReleaseDate == nil || req.ReleaseDate.String() != tt.want):
				t.Errorf("release date = %v, want %s", req.ReleaseDate, tt.want)
			}
		})
	}

	var req UpdateMovieRequest
	if err := json.Unmarshal([]byte(`{"title":"Dune","oscar_count":6}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Title == nil || *req.Title != "Dune" || req.OscarCount == nil || *req.OscarCount != 6 {
		t.Errorf("other fields not decoded: %+v", req)
	}
}
