package workflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/civil-general-applications/internal/domain/calendar"
	"github.com/turtacn/civil-general-applications/internal/domain/notification"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// HolidaySource supplies public holidays, e.g. the bank holidays feed.
type HolidaySource interface {
	Holidays(ctx context.Context) ([]calendar.Holiday, error)
}

// DeadlineMode selects how days are counted.
type DeadlineMode string

const (
	// ModeCalendarDays counts calendar days and rolls onto a working day.
	ModeCalendarDays DeadlineMode = "calendar_days"
	ModeWorkingDays  DeadlineMode = "working_days"
)

// DeadlineQuery asks for the deadline days after Base.
type DeadlineQuery struct {
	Base time.Time    `json:"base"`
	Days int          `json:"days"`
	Mode DeadlineMode `json:"mode,omitempty"`
}

type DeadlineResult struct {
	Deadline  time.Time `json:"deadline"`
	Formatted string    `json:"formatted"`
	Holidays  int       `json:"holidaysKnown"`
}

// DeadlineService computes deadlines against a holiday calendar that can be
// refreshed while the service is running.
type DeadlineService interface {
	Deadline(ctx context.Context, q DeadlineQuery) (*DeadlineResult, error)
	// Refresh reloads holidays from every source. A failing source keeps its
	// previously loaded holidays.
	Refresh(ctx context.Context) error
}

type DeadlineServiceConfig struct {
	Location       *time.Location
	CutOffHour     int
	StaticHolidays []calendar.Holiday
}

type deadlineServiceImpl struct {
	sources []HolidaySource
	cfg     DeadlineServiceConfig
	logger  logging.Logger

	mu      sync.Mutex
	loaded  map[int][]calendar.Holiday
	current atomic.Pointer[calendar.DeadlineCalculator]
}

func NewDeadlineService(sources []HolidaySource, logger logging.Logger, cfg DeadlineServiceConfig) DeadlineService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	s := &deadlineServiceImpl{
		sources: sources,
		cfg:     cfg,
		logger:  logger.Named("deadline"),
		loaded:  make(map[int][]calendar.Holiday),
	}
	s.rebuild()
	return s
}

func (s *deadlineServiceImpl) Deadline(ctx context.Context, q DeadlineQuery) (*DeadlineResult, error) {
	if q.Days < 0 {
		return nil, errors.NewValidation("Days must not be negative")
	}
	if q.Base.IsZero() {
		return nil, errors.NewValidation("Enter a base date")
	}
	calc := s.current.Load()

	var due time.Time
	switch q.Mode {
	case "", ModeCalendarDays:
		due = calc.ResponseDeadline(q.Base, q.Days)
	case ModeWorkingDays:
		due = calc.WorkingDaysDeadline(q.Base, q.Days)
	default:
		return nil, errors.InvalidParam("unknown deadline mode").WithDetail(string(q.Mode))
	}
	return &DeadlineResult{
		Deadline:  due,
		Formatted: due.Format(notification.DeadlineLayout),
		Holidays:  len(calc.Calendar().Holidays()),
	}, nil
}

func (s *deadlineServiceImpl) Refresh(ctx context.Context) error {
	results := make([][]calendar.Holiday, len(s.sources))
	failed := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			hs, err := src.Holidays(gctx)
			if err != nil {
				failed[i] = err
				return nil
			}
			results[i] = hs
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	s.mu.Lock()
	for i := range s.sources {
		if failed[i] != nil {
			s.logger.Warn("Holiday source failed, keeping previous holidays", logging.Int("source", i), logging.Err(failed[i]))
			if firstErr == nil {
				firstErr = failed[i]
			}
			continue
		}
		s.loaded[i] = results[i]
	}
	s.mu.Unlock()

	s.rebuild()
	if firstErr != nil {
		return errors.Wrap(firstErr, errors.ErrCodeExternalService, "refresh holidays")
	}
	return nil
}

func (s *deadlineServiceImpl) rebuild() {
	s.mu.Lock()
	dates := calendar.Dates(s.cfg.StaticHolidays)
	for _, hs := range s.loaded {
		dates = append(dates, calendar.Dates(hs)...)
	}
	s.mu.Unlock()

	cal := calendar.NewWorkingDayCalendar(s.cfg.Location, dates...)
	s.current.Store(calendar.NewDeadlineCalculator(cal, s.cfg.CutOffHour))
	s.logger.Debug("Calendar rebuilt", logging.Int("holidays", len(cal.Holidays())))
}

//Personal.AI order the ending
