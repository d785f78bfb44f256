package webhook

import (
	"context"
	"net/http"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/services/contact"
	"aliadolaboral/services/payment"

	"github.com/go-redis/redis/v8"
)

// WebhookService applies payment provider notifications. Every event is applied at most once.
type WebhookService interface {
	HandleStripe(ctx context.Context, payload []byte, signature string) error
	HandleMercadoPago(ctx context.Context, body []byte, header http.Header, dataID string) error
}

// ClaimTTL is how long a processed event id is remembered.
const ClaimTTL = 72 * time.Hour

type DefaultWebhookService struct {
	Contacts repository.ContactRepository
	Lawyers  repository.LawyerRepository
	Records  repository.RecordRepository
	Payments contact.ContactService
	Stripe   payment.StripeGateway
	MP       payment.MercadoPagoGateway
	Cache    *redis.Client
	// MPSecret enables the x-signature check when set.
	MPSecret string
	Now      func() time.Time
}

func NewDefaultWebhookService(
	contacts repository.ContactRepository,
	lawyers repository.LawyerRepository,
	records repository.RecordRepository,
	payments contact.ContactService,
	stripe payment.StripeGateway,
	mp payment.MercadoPagoGateway,
	cache *redis.Client,
	mpSecret string,
) *DefaultWebhookService {
	return &DefaultWebhookService{
		Contacts: contacts,
		Lawyers:  lawyers,
		Records:  records,
		Payments: payments,
		Stripe:   stripe,
		MP:       mp,
		Cache:    cache,
		MPSecret: mpSecret,
		Now:      time.Now,
	}
}

func (s *DefaultWebhookService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
