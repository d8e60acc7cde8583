// Package store writes article records to the CSV output file and reads them
// back.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/pevans/newsfetch/news"
)

// Header is the fixed first row of every output file.
var Header = []string{"id", "title", "description", "source"}

// WriteCSV writes articles to path, replacing any existing file. The parent
// directory must already exist.
func WriteCSV(path string, articles []news.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return &news.Error{Kind: news.KindWrite, Op: "create " + path, Err: err}
	}

	if err := Encode(f, articles); err != nil {
		f.Close()
		return &news.Error{Kind: news.KindWrite, Op: "write " + path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &news.Error{Kind: news.KindWrite, Op: "close " + path, Err: err}
	}

	return nil
}

// Encode writes the header and one row per article to w. Absent fields are
// written as empty cells.
func Encode(w io.Writer, articles []news.Article) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, a := range articles {
		row := []string{
			strconv.Itoa(a.ID),
			news.Value(a.Title),
			news.Value(a.Description),
			a.Source,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write article %d: %w", a.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reads an output file written by WriteCSV.
func ReadCSV(path string) ([]news.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses rows produced by Encode. Empty title and description cells
// become absent fields.
func Decode(r io.Reader) ([]news.Article, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}

	articles := []news.Article{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", row[0], err)
		}

		articles = append(articles, news.Article{
			ID:          id,
			Title:       optional(row[1]),
			Description: optional(row[2]),
			Source:      row[3],
		})
	}

	return articles, nil
}

func optional(cell string) *string {
	if cell == "" {
		return nil
	}
	return &cell
}
