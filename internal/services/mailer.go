package services

import (
	"context"

	"storefront/pkg/rabbitmq"
)

// Mailer delivers mail events to the external mailer.
type Mailer interface {
	PublishMail(ctx context.Context, event rabbitmq.MailEvent) error
}
