package calendar

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Holiday is a single public holiday.
type Holiday struct {
	Date  time.Time
	Title string
}

type holidayFile struct {
	Division string `yaml:"division"`
	Holidays []struct {
		Date  string `yaml:"date"`
		Title string `yaml:"title"`
	} `yaml:"holidays"`
}

// ParseHolidaysYAML reads a holiday file of the form
//
//	division: england-and-wales
//	holidays:
//	  - date: 2024-12-25
//	    title: Christmas Day
//
// Entries for a different division than want are skipped when want is set.
func ParseHolidaysYAML(r io.Reader, want string) ([]Holiday, error) {
	var f holidayFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("calendar: decode holidays: %w", err)
	}
	if want != "" && f.Division != "" && f.Division != want {
		return nil, nil
	}
	out := make([]Holiday, 0, len(f.Holidays))
	for i, h := range f.Holidays {
		d, err := time.Parse(dateKeyLayout, h.Date)
		if err != nil {
			return nil, fmt.Errorf("calendar: holidays[%d].date %q: %w", i, h.Date, err)
		}
		out = append(out, Holiday{Date: d, Title: h.Title})
	}
	return out, nil
}

// LoadHolidaysYAML reads a holiday file from disk. A missing path yields no
// holidays.
func LoadHolidaysYAML(path, division string) ([]Holiday, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("calendar: open holidays: %w", err)
	}
	defer f.Close()
	return ParseHolidaysYAML(f, division)
}

// Dates extracts the dates from hs.
func Dates(hs []Holiday) []time.Time {
	out := make([]time.Time, len(hs))
	for i, h := range hs {
		out[i] = h.Date
	}
	return out
}

//Personal.AI order the ending
