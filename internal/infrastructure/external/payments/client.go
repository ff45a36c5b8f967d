// Package payments settles general application fees through the payments
// service.
package payments

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const paymentsPath = "/payments"

type feeLine struct {
	Code    string          `json:"code"`
	Version string          `json:"version"`
	Amount  decimal.Decimal `json:"calculated_amount"`
	Volume  int             `json:"volume"`
}

type paymentRequest struct {
	CaseReference string          `json:"ccd_case_number"`
	HwfReference  string          `json:"help_with_fees_reference,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Service       string          `json:"service"`
	SiteID        string          `json:"site_id"`
	Fees          []feeLine       `json:"fees"`
}

type statusHistory struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type paymentResponse struct {
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	ErrorCode       string          `json:"error_code"`
	ErrorMessage    string          `json:"error_message"`
	StatusHistories []statusHistory `json:"status_histories"`
}

// Client implements workflow.PaymentProcessor.
type Client struct {
	rest    *rest.Client
	service string
	siteID  string
	logger  logging.Logger
}

var _ workflow.PaymentProcessor = (*Client)(nil)

func NewClient(cfg config.PaymentsConfig, log logging.Logger, opts ...rest.Option) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("payments")
	opts = append([]rest.Option{rest.WithLogger(log), rest.WithErrorCode(errors.ErrCodePaymentFailed)}, opts...)
	rc, err := rest.New(cfg.BaseURL, cfg.Timeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{rest: rc, service: cfg.ServiceName, siteID: cfg.SiteID, logger: log}, nil
}

// CreatePayment posts the payment. An empty response body yields a nil result.
func (c *Client) CreatePayment(ctx context.Context, req workflow.PaymentRequest) (*hwf.PaymentResult, error) {
	amount := req.Fee.Pounds()
	body := paymentRequest{
		CaseReference: req.CaseReference,
		HwfReference:  req.HwfReference,
		Amount:        amount,
		Currency:      "GBP",
		Service:       c.service,
		SiteID:        c.siteID,
		Fees:          []feeLine{{Code: req.Fee.Code, Version: req.Fee.Version, Amount: amount, Volume: 1}},
	}

	var resp *paymentResponse
	err := c.rest.Do(ctx, rest.Request{
		Method: http.MethodPost,
		Path:   paymentsPath,
		Body:   body,
		Token:  workflow.ServiceToken(ctx),
		Header: map[string]string{"Idempotency-Key": req.IdempotencyKey},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		c.logger.Warn("Payments service returned no body", logging.CaseReference(req.CaseReference))
		return nil, nil
	}
	return toResult(*resp), nil
}

func toResult(r paymentResponse) *hwf.PaymentResult {
	if strings.EqualFold(r.Status, "success") {
		return &hwf.PaymentResult{Status: hwf.PaymentSuccess, Reference: r.Reference}
	}
	res := &hwf.PaymentResult{
		Status:       hwf.PaymentFailed,
		Reference:    r.Reference,
		ErrorCode:    r.ErrorCode,
		ErrorMessage: r.ErrorMessage,
	}
	if res.ErrorCode == "" {
		for _, h := range r.StatusHistories {
			if h.ErrorCode != "" {
				res.ErrorCode = h.ErrorCode
				res.ErrorMessage = h.ErrorMessage
				break
			}
		}
	}
	return res
}

//Personal.AI order the ending
