// Package fee resolves the fee payable for a general application from its
// selected types. Lookups go through the Lookup port; selection keeps the
// lowest fee among the categories that apply.
package fee

import (
	"context"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// Fee registry event and service names.
const (
	EventGeneralApplication = "general application"
	EventMiscellaneous      = "miscellaneous"
	ServiceGeneral          = "general"
	ServiceOther            = "other"
)

// Request is one fee registry query.
type Request struct {
	Keyword string `json:"keyword"`
	Event   string `json:"event"`
	Service string `json:"service"`
}

// Lookup queries the fee registry.
type Lookup interface {
	LookupFee(ctx context.Context, req Request) (generalapp.Fee, error)
}

// Keywords are the registry keywords per fee category.
type Keywords struct {
	VaryOrSuspend             string
	WithoutNotice             string
	WithNotice                string
	CertificateOfSatisfaction string
}

// DefaultKeywords matches the registry's current keyword set.
func DefaultKeywords() Keywords {
	return Keywords{
		VaryOrSuspend:             "AppnToVaryOrSuspend",
		WithoutNotice:             "GeneralAppWithoutNotice",
		WithNotice:                "GAOnNotice",
		CertificateOfSatisfaction: "CertificateOfSorC",
	}
}

// Candidate is a fee considered during selection.
type Candidate struct {
	Request Request        `json:"request"`
	Fee     generalapp.Fee `json:"fee"`
	Reason  string         `json:"reason"`
}

// Assessment is the selected fee plus every candidate that was looked up,
// in evaluation order.
type Assessment struct {
	Fee        generalapp.Fee `json:"fee"`
	Candidates []Candidate    `json:"candidates"`
}

// Calculator resolves fees. It is safe for concurrent use.
type Calculator struct {
	lookup   Lookup
	keywords Keywords
	now      func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the clock used by the free-application rule.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

func NewCalculator(lookup Lookup, keywords Keywords, opts ...Option) *Calculator {
	c := &Calculator{lookup: lookup, keywords: keywords, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compute returns the fee for app.
func (c *Calculator) Compute(ctx context.Context, app generalapp.Application) (generalapp.Fee, error) {
	a, err := c.Assess(ctx, app)
	if err != nil {
		return generalapp.Fee{}, err
	}
	return a.Fee, nil
}

// Assess evaluates the fee categories most specific first. Each category that
// fires consumes one selected type; later categories run only while types
// remain unaccounted for. The lowest fee wins and ties keep the earlier one.
func (c *Calculator) Assess(ctx context.Context, app generalapp.Application) (Assessment, error) {
	if err := app.Validate(); err != nil {
		return Assessment{}, err
	}

	sel := selection{}
	remaining := len(app.Types)

	if app.Has(generalapp.VaryPaymentTerms) {
		// Varying payment terms cannot be combined with other types.
		remaining--
		if err := c.consider(ctx, &sel, c.miscRequest(c.keywords.VaryOrSuspend), "vary payment terms"); err != nil {
			return Assessment{}, err
		}
	}

	if remaining > 0 && app.Has(generalapp.SettleByConsent) {
		remaining--
		if err := c.consider(ctx, &sel, c.generalRequest(c.keywords.WithoutNotice), "settle by consent"); err != nil {
			return Assessment{}, err
		}
	}

	if remaining > 0 && app.Has(generalapp.SetAsideJudgment) && !app.RespondentAgreed {
		remaining--
		kw := c.keywords.WithoutNotice
		if app.WithNotice {
			kw = c.keywords.WithNotice
		}
		if err := c.consider(ctx, &sel, c.generalRequest(kw), "set aside judgment"); err != nil {
			return Assessment{}, err
		}
	}

	if remaining > 0 && app.Has(generalapp.ConfirmCCJDebtPaid) {
		remaining--
		if err := c.consider(ctx, &sel, c.miscRequest(c.keywords.CertificateOfSatisfaction), "certificate of satisfaction"); err != nil {
			return Assessment{}, err
		}
	}

	if remaining > 0 {
		if app.IsFree(c.now()) {
			sel.offer(Candidate{Fee: generalapp.FreeFee(), Reason: "free adjournment"})
		} else if err := c.consider(ctx, &sel, c.generalRequest(c.defaultKeyword(app)), "default"); err != nil {
			return Assessment{}, err
		}
	}

	if sel.best == nil {
		return Assessment{}, errors.New(errors.ErrCodeNoFeesReturned, "no fee category applied").
			WithDetail(app.CaseReference)
	}
	return Assessment{Fee: sel.best.Fee, Candidates: sel.all}, nil
}

// defaultKeyword charges the on-notice fee only when the other party is told
// and has not agreed.
func (c *Calculator) defaultKeyword(app generalapp.Application) string {
	if app.WithNotice && !app.RespondentAgreed {
		return c.keywords.WithNotice
	}
	return c.keywords.WithoutNotice
}

func (c *Calculator) generalRequest(keyword string) Request {
	return Request{Keyword: keyword, Event: EventGeneralApplication, Service: ServiceGeneral}
}

func (c *Calculator) miscRequest(keyword string) Request {
	return Request{Keyword: keyword, Event: EventMiscellaneous, Service: ServiceOther}
}

func (c *Calculator) consider(ctx context.Context, sel *selection, req Request, reason string) error {
	f, err := c.lookup.LookupFee(ctx, req)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNoFeesReturned) {
			return err
		}
		return errors.Wrap(err, errors.ErrCodeFeeLookupFailed, "fee lookup failed").WithDetail(req.Keyword)
	}
	if f.AmountPence <= 0 {
		return errors.New(errors.ErrCodeNoFeesReturned, "fee registry returned no amount").WithDetail(req.Keyword)
	}
	sel.offer(Candidate{Request: req, Fee: f, Reason: reason})
	return nil
}

type selection struct {
	best *Candidate
	all  []Candidate
}

func (s *selection) offer(c Candidate) {
	s.all = append(s.all, c)
	if s.best == nil || c.Fee.AmountPence < s.best.Fee.AmountPence {
		cp := c
		s.best = &cp
	}
}

//Personal.AI order the ending
