// Package feeregistry looks fees up in the fees register and caches the
// answers in Redis.
package feeregistry

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const lookupPath = "/fees-register/fees/lookup"

// lookupResponse is the register's fee lookup body. Amounts are in pounds.
type lookupResponse struct {
	Code        string           `json:"code"`
	Description string           `json:"description"`
	Version     int              `json:"version"`
	FeeAmount   *decimal.Decimal `json:"fee_amount"`
}

// Client implements fee.Lookup against the fees register.
type Client struct {
	rest          *rest.Client
	channel       string
	jurisdiction1 string
	jurisdiction2 string
	logger        logging.Logger
}

var _ fee.Lookup = (*Client)(nil)

func NewClient(cfg config.FeeRegistryConfig, log logging.Logger, opts ...rest.Option) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("fee-registry")
	opts = append([]rest.Option{rest.WithLogger(log), rest.WithErrorCode(errors.ErrCodeFeeLookupFailed)}, opts...)
	rc, err := rest.New(cfg.BaseURL, cfg.Timeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		rest:          rc,
		channel:       cfg.Channel,
		jurisdiction1: cfg.Jurisdiction1,
		jurisdiction2: cfg.Jurisdiction2,
		logger:        log,
	}, nil
}

// LookupFee queries the register. The service token is taken from ctx.
func (c *Client) LookupFee(ctx context.Context, req fee.Request) (generalapp.Fee, error) {
	q := url.Values{}
	q.Set("channel", c.channel)
	q.Set("event", req.Event)
	q.Set("jurisdiction1", c.jurisdiction1)
	q.Set("jurisdiction2", c.jurisdiction2)
	q.Set("service", req.Service)
	q.Set("keyword", req.Keyword)

	var resp lookupResponse
	err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodGet,
		Path:   lookupPath,
		Query:  q,
		Token:  workflow.ServiceToken(ctx),
	}, &resp)
	if err != nil {
		return generalapp.Fee{}, err
	}

	if resp.FeeAmount == nil || !resp.FeeAmount.IsPositive() {
		return generalapp.Fee{}, errors.New(errors.ErrCodeNoFeesReturned, "fee registry returned no amount").WithDetail(req.Keyword)
	}
	f := generalapp.Fee{
		AmountPence: generalapp.PenceFromPounds(*resp.FeeAmount),
		Code:        resp.Code,
		Version:     strconv.Itoa(resp.Version),
	}
	c.logger.Debug("Fee resolved",
		logging.String("keyword", req.Keyword),
		logging.String("code", f.Code),
		logging.Int64("amount_pence", f.AmountPence))
	return f, nil
}

//Personal.AI order the ending
