// Package bankholidays reads the gov.uk bank holidays feed.
package bankholidays

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/calendar"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const dateLayout = "2006-01-02"

type event struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

type division struct {
	Division string  `json:"division"`
	Events   []event `json:"events"`
}

// Client fetches one division of the feed.
type Client struct {
	rest     *rest.Client
	path     string
	division string
	logger   logging.Logger
}

// NewClient takes the full feed URL, e.g. https://www.gov.uk/bank-holidays.json.
func NewClient(feedURL, divisionName string, log logging.Logger, opts ...rest.Option) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, errors.InvalidParam("bank holidays URL is invalid").WithDetail(feedURL)
	}
	base := u.Scheme + "://" + u.Host
	log = log.Named("bank-holidays")
	rc, err := rest.New(base, 10*time.Second, append([]rest.Option{rest.WithLogger(log)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{rest: rc, path: u.Path, division: divisionName, logger: log}, nil
}

// Holidays returns the configured division's holidays. An unknown division
// is an error.
func (c *Client) Holidays(ctx context.Context) ([]calendar.Holiday, error) {
	var feed map[string]division
	if err := c.rest.Do(ctx, rest.Request{Method: http.MethodGet, Path: c.path}, &feed); err != nil {
		return nil, err
	}
	d, ok := feed[c.division]
	if !ok {
		return nil, errors.NotFound("bank holiday division not in feed").WithDetail(c.division)
	}

	out := make([]calendar.Holiday, 0, len(d.Events))
	for _, e := range d.Events {
		t, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			c.logger.Warn("Skipping bad holiday date", logging.String("date", e.Date))
			continue
		}
		out = append(out, calendar.Holiday{Date: t, Title: e.Title})
	}
	c.logger.Info("Loaded bank holidays", logging.String("division", c.division), logging.Int("count", len(out)))
	return out, nil
}

//Personal.AI order the ending
