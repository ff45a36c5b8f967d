package bankholidays

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const feed = `{
  "england-and-wales": {"division": "england-and-wales", "events": [
    {"title": "Christmas Day", "date": "2024-12-25", "notes": "", "bunting": true},
    {"title": "Boxing Day", "date": "2024-12-26", "notes": "", "bunting": true},
    {"title": "Broken", "date": "26/12/2024"}
  ]},
  "scotland": {"division": "scotland", "events": [
    {"title": "St Andrew's Day", "date": "2024-12-02"}
  ]}
}`

func serve(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bank-holidays.json", r.URL.Path)
		_, _ = w.Write([]byte(feed))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/bank-holidays.json"
}

func TestHolidays_Division(t *testing.T) {
	c, err := NewClient(serve(t), "england-and-wales", nil)
	require.NoError(t, err)

	hs, err := c.Holidays(context.Background())
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "Christmas Day", hs[0].Title)
	assert.Equal(t, time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC), hs[1].Date)
}

func TestHolidays_UnknownDivision(t *testing.T) {
	c, err := NewClient(serve(t), "northern-ireland", nil)
	require.NoError(t, err)

	_, err = c.Holidays(context.Background())
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("division: england-and-wales\nholidays:\n  - date: 2024-12-25\n    title: Christmas Day\n"), 0o600))

	hs, err := FileSource{Path: path, Division: "england-and-wales"}.Holidays(context.Background())
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "Christmas Day", hs[0].Title)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Holidays(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeStorageError))
}

//Personal.AI order the ending
