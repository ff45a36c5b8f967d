// Package notify delivers templated emails through a GOV.UK Notify style API.
package notify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/notification"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const (
	emailPath = "/v2/notifications/email"
	uuidLen   = 36
)

type emailRequest struct {
	EmailAddress    string            `json:"email_address"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
	Reference       string            `json:"reference,omitempty"`
}

// Client implements workflow.NotificationSender.
type Client struct {
	rest      *rest.Client
	serviceID string
	secret    []byte
	templates map[notification.TemplateKey]string
	now       func() time.Time
	logger    logging.Logger
}

var _ workflow.NotificationSender = (*Client)(nil)

// ParseAPIKey splits "<name>-<service uuid>-<secret uuid>".
func ParseAPIKey(key string) (serviceID, secret string, err error) {
	if len(key) < 2*uuidLen+1 {
		return "", "", errors.InvalidParam("notify api key is malformed")
	}
	secret = key[len(key)-uuidLen:]
	serviceID = key[len(key)-2*uuidLen-1 : len(key)-uuidLen-1]
	return serviceID, secret, nil
}

func NewClient(cfg config.NotifyConfig, log logging.Logger, opts ...rest.Option) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("notify")
	serviceID, secret, err := ParseAPIKey(cfg.APIKey)
	if err != nil {
		return nil, err
	}
	opts = append([]rest.Option{rest.WithLogger(log), rest.WithErrorCode(errors.ErrCodeNotificationFailed)}, opts...)
	rc, err := rest.New(cfg.BaseURL, 0, opts...)
	if err != nil {
		return nil, err
	}

	templates := make(map[notification.TemplateKey]string, len(cfg.Templates))
	for k, v := range cfg.Templates {
		templates[notification.TemplateKey(k)] = v
	}
	for _, k := range notification.AllTemplateKeys() {
		if templates[k] == "" {
			log.Warn("No template id configured", logging.String("template", string(k)))
		}
	}

	return &Client{
		rest:      rc,
		serviceID: serviceID,
		secret:    []byte(secret),
		templates: templates,
		now:       time.Now,
		logger:    log,
	}, nil
}

// bearer signs the short-lived token the provider expects on every call.
func (c *Client) bearer() (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": c.serviceID,
		"iat": c.now().Unix(),
	})
	return tok.SignedString(c.secret)
}

func (c *Client) SendNotification(ctx context.Context, recipient string, template notification.TemplateKey, properties map[string]string, referenceID string) error {
	templateID := c.templates[template]
	if templateID == "" {
		return errors.New(errors.ErrCodeNotificationFailed, "no template id configured").WithDetail(string(template))
	}
	if strings.TrimSpace(recipient) == "" {
		return errors.InvalidParam("recipient email is blank").WithDetail(referenceID)
	}

	token, err := c.bearer()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeNotificationFailed, "sign notify token")
	}
	err = c.rest.Do(ctx, rest.Request{
		Method: http.MethodPost,
		Path:   emailPath,
		Token:  token,
		Body: emailRequest{
			EmailAddress:    recipient,
			TemplateID:      templateID,
			Personalisation: properties,
			Reference:       referenceID,
		},
	}, nil)
	if err != nil {
		return err
	}
	c.logger.Debug("Notification accepted", logging.String("template", string(template)), logging.String("reference", referenceID))
	return nil
}

//Personal.AI order the ending
