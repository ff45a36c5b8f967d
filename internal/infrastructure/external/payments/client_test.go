package payments

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

func newPayments(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.PaymentsConfig{BaseURL: srv.URL, ServiceName: "civil", SiteID: "AAA7", Timeout: time.Second}, nil, rest.WithRetryMax(0))
	require.NoError(t, err)
	return c
}

var payReq = workflow.PaymentRequest{
	CaseReference:  "1234567890123456",
	HwfReference:   "HWF-A1B-23C",
	Fee:            generalapp.Fee{AmountPence: 27500, Code: "FEE0443", Version: "2"},
	IdempotencyKey: "idem-1",
}

func TestCreatePayment_Success(t *testing.T) {
	c := newPayments(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, paymentsPath, r.URL.Path)
		assert.Equal(t, "idem-1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Bearer s2s", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "1234567890123456", body["ccd_case_number"])
		assert.Equal(t, "275", body["amount"])
		assert.Equal(t, "GBP", body["currency"])
		assert.Equal(t, "AAA7", body["site_id"])

		_, _ = w.Write([]byte(`{"reference":"RC-1111-2222","status":"Success"}`))
	})

	res, err := c.CreatePayment(workflow.WithServiceToken(context.Background(), "s2s"), payReq)
	require.NoError(t, err)
	assert.Equal(t, &hwf.PaymentResult{Status: hwf.PaymentSuccess, Reference: "RC-1111-2222"}, res)
}

func TestCreatePayment_FailedFromHistory(t *testing.T) {
	c := newPayments(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reference":"RC-3","status":"Failed","status_histories":[{"status":"failed","error_code":"CA-E0004","error_message":"Your account is deleted"}]}`))
	})

	res, err := c.CreatePayment(context.Background(), payReq)
	require.NoError(t, err)
	assert.Equal(t, hwf.PaymentFailed, res.Status)
	assert.Equal(t, "CA-E0004", res.ErrorCode)
	assert.Equal(t, "Your account is deleted", res.ErrorMessage)
}

func TestCreatePayment_EmptyBody(t *testing.T) {
	c := newPayments(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	res, err := c.CreatePayment(context.Background(), payReq)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCreatePayment_Unauthorized(t *testing.T) {
	c := newPayments(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.CreatePayment(context.Background(), payReq)
	assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))
}

func TestCreatePayment_Rejected(t *testing.T) {
	c := newPayments(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	_, err := c.CreatePayment(context.Background(), payReq)
	assert.True(t, errors.IsCode(err, errors.ErrCodePaymentFailed))
}

//Personal.AI order the ending
