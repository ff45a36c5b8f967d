package bankholidays

import (
	"context"

	"github.com/turtacn/civil-general-applications/internal/domain/calendar"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// FileSource reads holidays from a YAML file on every call, so edits are
// picked up by the next refresh.
type FileSource struct {
	Path     string
	Division string
}

func (f FileSource) Holidays(_ context.Context) ([]calendar.Holiday, error) {
	hs, err := calendar.LoadHolidaysYAML(f.Path, f.Division)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "load holiday file").WithDetail(f.Path)
	}
	return hs, nil
}

//Personal.AI order the ending
