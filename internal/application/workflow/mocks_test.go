package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/domain/notification"
)

type mockFeeLookup struct{ mock.Mock }

func (m *mockFeeLookup) LookupFee(ctx context.Context, req fee.Request) (generalapp.Fee, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(generalapp.Fee), args.Error(1)
}

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) ResolveIdentity(ctx context.Context, token string) (Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(Identity), args.Error(1)
}

func (m *mockIdentity) SystemToken(ctx context.Context, forceRefresh bool) (string, error) {
	args := m.Called(ctx, forceRefresh)
	return args.String(0), args.Error(1)
}

type mockDocuments struct{ mock.Mock }

func (m *mockDocuments) GenerateDocument(ctx context.Context, req DocumentRequest, authToken string) (DocumentReference, error) {
	args := m.Called(ctx, req, authToken)
	return args.Get(0).(DocumentReference), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendNotification(ctx context.Context, recipient string, template notification.TemplateKey, properties map[string]string, referenceID string) error {
	return m.Called(ctx, recipient, template, properties, referenceID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBusinessProcess(ctx context.Context, evt BusinessProcessEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) CreatePayment(ctx context.Context, req PaymentRequest) (*hwf.PaymentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*hwf.PaymentResult)
	return res, args.Error(1)
}

//Personal.AI order the ending
