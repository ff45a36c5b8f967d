package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/bankholidays"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/feeregistry"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// priceList is an offline fee.Lookup read from a YAML file.
type priceList map[string]generalapp.Fee

type priceListFile struct {
	Fees []struct {
		Keyword     string `yaml:"keyword"`
		AmountPence int64  `yaml:"amount_pence"`
		Code        string `yaml:"code"`
		Version     string `yaml:"version"`
	} `yaml:"fees"`
}

func loadPriceList(path string) (priceList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidParam("cannot read price list").WithDetail(path).WithCause(err)
	}
	var f priceListFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "price list is not valid YAML").WithDetail(path)
	}
	out := make(priceList, len(f.Fees))
	for _, p := range f.Fees {
		out[p.Keyword] = generalapp.Fee{AmountPence: p.AmountPence, Code: p.Code, Version: p.Version}
	}
	return out, nil
}

func (p priceList) LookupFee(_ context.Context, req fee.Request) (generalapp.Fee, error) {
	f, ok := p[req.Keyword]
	if !ok {
		return generalapp.Fee{}, errors.New(errors.ErrCodeNoFeesReturned, "no fee in price list").WithDetail(req.Keyword)
	}
	return f, nil
}

type feeOutput struct {
	*workflow.FeeResult
}

func (feeOutput) TableHeaders() []string { return []string{"KEYWORD", "CODE", "VERSION", "AMOUNT", "REASON"} }

func (o feeOutput) TableRows() [][]string {
	rows := make([][]string, 0, len(o.Candidates)+1)
	for _, c := range o.Candidates {
		rows = append(rows, []string{c.Request.Keyword, c.Fee.Code, c.Fee.Version, c.Fee.FormatPounds(), c.Reason})
	}
	rows = append(rows, []string{"selected", o.Fee.Code, o.Fee.Version, o.Fee.FormatPounds(), ""})
	return rows
}

func newFeeCmd() *cobra.Command {
	var input, prices string

	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Compute the fee for a general application",
		Long: `Compute the fee for the general application read from --input (or stdin).

With --prices the fee is priced from a local YAML price list; otherwise the
configured fee registry is queried.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var app generalapp.Application
			if err := readInput(cmd, input, &app); err != nil {
				return err
			}

			var lookup fee.Lookup
			if prices != "" {
				if lookup, err = loadPriceList(prices); err != nil {
					return err
				}
			} else if lookup, err = feeregistry.NewClient(cc.Config.FeeRegistry, cc.Logger); err != nil {
				return err
			}

			svc := workflow.NewFeeService(lookup, nil, nil, cc.Logger, workflow.FeeServiceConfig{
				Keywords:           feeKeywords(cc.Config.FeeRegistry.Keywords),
				CaseDetailsBaseURL: cc.Config.Notify.CaseDetailsBaseURL,
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			res, err := svc.ComputeFee(ctx, app)
			if err != nil {
				return err
			}
			return PrintResult(cmd, feeOutput{res})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "application JSON file (- for stdin)")
	cmd.Flags().StringVar(&prices, "prices", "", "YAML price list for offline pricing")
	return cmd
}

func newDecideCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Classify a judicial decision without side effects",
		Long: `Validate and classify the decision request read from --input and print the
criterion, the next case state and the notifications that would be sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var req workflow.DecisionRequest
			if err := readInput(cmd, input, &req); err != nil {
				return err
			}
			loc, err := calendarLocation(cc)
			if err != nil {
				return err
			}
			svc := workflow.NewDecisionService(nil, nil, nil, nil, nil, cc.Logger, workflow.DecisionServiceConfig{Location: loc})
			out, err := svc.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "decision request JSON file (- for stdin)")
	return cmd
}

func newHwfCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "hwf",
		Short: "Apply a Help with Fees event to a record",
		Long: `Apply the HWF event in the request read from --input and print the updated
record and the next business-process event. No payment is taken.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			var req workflow.HwfRequest
			if err := readInput(cmd, input, &req); err != nil {
				return err
			}
			svc := workflow.NewHwfService(nil, nil, nil, nil, cc.Logger, workflow.HwfServiceConfig{
				Features: workflow.Features{CoSCEnabled: cc.Config.Features.CoSCEnabled},
			})
			res, err := svc.ApplyEvent(cmd.Context(), req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "HWF request JSON file (- for stdin)")
	return cmd
}

func newDeadlineCmd() *cobra.Command {
	var (
		from    string
		days    int
		working bool
		feed    bool
	)

	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Calculate a response deadline",
		Long: `Calculate the deadline --days after --from, skipping weekends and the
holidays in the configured holiday file. --feed also loads the bank holidays
feed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			loc, err := calendarLocation(cc)
			if err != nil {
				return err
			}
			base := time.Now().In(loc)
			if from != "" {
				if base, err = parseBase(from, loc); err != nil {
					return err
				}
			}

			sources := holidaySources(cc.Config.Calendar, cc.Logger, feed)
			svc := workflow.NewDeadlineService(sources, cc.Logger, workflow.DeadlineServiceConfig{
				Location:   loc,
				CutOffHour: cc.Config.Calendar.CutOffHour,
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), cc.Timeout)
			defer cancel()
			if err := svc.Refresh(ctx); err != nil {
				cc.Logger.Warn("Holiday refresh incomplete", logging.Err(err))
			}

			mode := workflow.ModeCalendarDays
			if working {
				mode = workflow.ModeWorkingDays
			}
			res, err := svc.Deadline(ctx, workflow.DeadlineQuery{Base: base, Days: days, Mode: mode})
			if err != nil {
				return err
			}
			return PrintResult(cmd, res)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "base date (2006-01-02 or RFC 3339; default now)")
	cmd.Flags().IntVar(&days, "days", 0, "number of days")
	cmd.Flags().BoolVar(&working, "working", false, "count working days instead of calendar days")
	cmd.Flags().BoolVar(&feed, "feed", false, "also load the bank holidays feed")
	return cmd
}

func parseBase(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.InvalidParam(fmt.Sprintf("cannot parse date %q", s))
	}
	return t.In(loc), nil
}

func calendarLocation(cc *CLIContext) (*time.Location, error) {
	loc, err := time.LoadLocation(cc.Config.Calendar.Location)
	if err != nil {
		return nil, errors.InvalidParam("unknown calendar location").WithDetail(cc.Config.Calendar.Location)
	}
	return loc, nil
}

func feeKeywords(k config.FeeKeywords) fee.Keywords {
	return fee.Keywords{
		VaryOrSuspend:             k.VaryOrSuspend,
		WithoutNotice:             k.WithoutNotice,
		WithNotice:                k.WithNotice,
		CertificateOfSatisfaction: k.CertificateOfSatisfaction,
	}
}

// holidaySources lists the holiday file and, when withFeed is set, the bank
// holidays feed.
func holidaySources(cal config.CalendarConfig, logger logging.Logger, withFeed bool) []workflow.HolidaySource {
	var sources []workflow.HolidaySource
	if cal.HolidaysFile != "" {
		sources = append(sources, bankholidays.FileSource{Path: cal.HolidaysFile, Division: cal.Division})
	}
	if withFeed && cal.BankHolidaysURL != "" {
		c, err := bankholidays.NewClient(cal.BankHolidaysURL, cal.Division, logger)
		if err != nil {
			logger.Warn("Bank holidays feed disabled", logging.Err(err))
		} else {
			sources = append(sources, c)
		}
	}
	return sources
}

//Personal.AI order the ending
