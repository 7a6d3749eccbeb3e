package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Partner creates orders at the print-on-demand partner. CreateOrder returns
// the partner's JSON response on success and *UpstreamError for non-success
// statuses.
type Partner interface {
	Configured() bool
	CreateOrder(ctx context.Context, req *PartnerOrderRequest) (jx.Raw, error)
}

// Config holds non-dependency configuration for the Service.
type Config struct {
	// Channel is sent as the "channel" metadata tag of every partner order.
	Channel string
}

// Service forwards validated orders to the partner. It keeps no state
// between calls.
type Service struct {
	partner   Partner
	validator *Validator
	channel   string
	created   metric.Int64Counter
}

// NewService creates an order Service.
func NewService(partner Partner, cfg Config, meter metric.Meter) (*Service, error) {
	created, err := meter.Int64Counter("deadgravel.orders",
		metric.WithDescription("Create-order requests by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Service{
		partner:   partner,
		validator: NewValidator(),
		channel:   channel,
		created:   created,
	}, nil
}

// Configured reports whether the partner credential is present.
func (s *Service) Configured() bool {
	return s.partner.Configured()
}

// Create checks the credential, decodes and validates payload, and makes
// exactly one partner call. The checks run in that order and stop at the
// first failure, before any network traffic.
func (s *Service) Create(ctx context.Context, payload []byte) (jx.Raw, error) {
	resp, err := s.create(ctx, payload)
	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
	return resp, err
}

func (s *Service) create(ctx context.Context, payload []byte) (jx.Raw, error) {
	if !s.partner.Configured() {
		return nil, ErrMissingCredential
	}

	req, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	resp, err := s.partner.CreateOrder(ctx, ToPartner(req, s.channel))
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, errors.Wrap(err, "create partner order")
	}
	return resp, nil
}

func outcome(err error) string {
	var (
		verr     *ValidationError
		upstream *UpstreamError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredential):
		return "unconfigured"
	case errors.Is(err, ErrInvalidBody), errors.As(err, &verr):
		return "rejected"
	case errors.As(err, &upstream):
		return "partner_error"
	default:
		return "failed"
	}
}
