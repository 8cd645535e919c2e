package usecase

import (
	"context"
	"fmt"
	"time"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/data/repository"
	"booking-payments/internal/events"
	"booking-payments/internal/gateway"
	"booking-payments/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeStore is an in-memory stand-in for the Postgres-backed repositories.
// MutateForEvent mimics the transactional dedup insert: a duplicate event ID
// aborts before the mutation runs, and a failed mutation records nothing.
type fakeStore struct {
	bookings map[uuid.UUID]*entity.Booking
	events   map[string]*entity.WebhookEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[uuid.UUID]*entity.Booking),
		events:   make(map[string]*entity.WebhookEvent),
	}
}

func (s *fakeStore) put(b *entity.Booking) {
	cp := *b
	s.bookings[b.ID] = &cp
}

type fakeBookingRepo struct {
	store     *fakeStore
	createErr error
	mutateErr error
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.store.put(booking)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) FindByExternalPaymentID(_ context.Context, intentID string) (*entity.Booking, error) {
	for _, b := range r.store.bookings {
		if b.ExternalPaymentID != nil && *b.ExternalPaymentID == intentID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByExternalSessionID(_ context.Context, sessionID string) (*entity.Booking, error) {
	for _, b := range r.store.bookings {
		if b.ExternalSessionID != nil && *b.ExternalSessionID == sessionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByCustomerEmail(_ context.Context, email string, limit, offset int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range r.store.bookings {
		if b.CustomerEmail == email {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) Mutate(_ context.Context, id uuid.UUID, fn func(b *entity.Booking) error) (*entity.Booking, error) {
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	if err := fn(&cp); err != nil {
		return nil, err
	}
	r.store.bookings[id] = &cp
	result := cp
	return &result, nil
}

func (r *fakeBookingRepo) MutateForEvent(_ context.Context, id uuid.UUID, evt *entity.WebhookEvent, fn func(b *entity.Booking) error) (*entity.Booking, error) {
	if _, dup := r.store.events[evt.EventID]; dup {
		return nil, repository.ErrEventAlreadyProcessed
	}
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	if err := fn(&cp); err != nil {
		return nil, err
	}
	r.store.bookings[id] = &cp
	r.store.events[evt.EventID] = evt
	result := cp
	return &result, nil
}

type fakeWebhookEventRepo struct {
	store *fakeStore
}

func (r *fakeWebhookEventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	_, ok := r.store.events[eventID]
	return ok, nil
}

func (r *fakeWebhookEventRepo) Record(_ context.Context, evt *entity.WebhookEvent) error {
	r.store.events[evt.EventID] = evt
	return nil
}

type fakeResourceRepo struct {
	resources map[uuid.UUID]*entity.Resource
}

func (r *fakeResourceRepo) FindByID(_ context.Context, kind entity.BookingKind, id uuid.UUID) (*entity.Resource, error) {
	res, ok := r.resources[id]
	if !ok || res.Kind != kind {
		return nil, nil
	}
	return res, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*entity.Customer, error) {
	c, ok := r.customers[email]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	r.customers[customer.Email] = customer
	return nil
}

type refundCall struct {
	intentID string
	amount   *float64
	reason   string
}

// fakeGateway records calls and answers with canned references.
type fakeGateway struct {
	intentErr  error
	sessionErr error
	captureErr error
	voidErr    error
	refundErr  error

	captureCalls  []string
	voidCalls     []string
	refundCalls   []refundCall
	customerCalls int
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount float64, currency, customerRef, description string, mode gateway.CaptureMode) (*gateway.PaymentIntentRef, error) {
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	return &gateway.PaymentIntentRef{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Status:       "requires_payment_method",
		AmountMinor:  gateway.MinorUnits(amount),
		Currency:     currency,
		CustomerRef:  customerRef,
		Description:  description,
	}, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, in gateway.SessionInput) (*gateway.SessionRef, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return &gateway.SessionRef{
		ID:            "cs_test",
		URL:           "https://checkout.test/cs_test",
		Status:        "open",
		PaymentStatus: "unpaid",
	}, nil
}

func (g *fakeGateway) ConfirmPaymentIntent(_ context.Context, intentID, methodRef string) (*gateway.PaymentIntentRef, error) {
	return &gateway.PaymentIntentRef{ID: intentID, Status: "succeeded"}, nil
}

func (g *fakeGateway) CapturePayment(_ context.Context, intentID string, amount *float64) (*gateway.PaymentIntentRef, error) {
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	g.captureCalls = append(g.captureCalls, intentID)
	return &gateway.PaymentIntentRef{ID: intentID, Status: "succeeded"}, nil
}

func (g *fakeGateway) VoidPayment(_ context.Context, intentID string) error {
	if g.voidErr != nil {
		return g.voidErr
	}
	g.voidCalls = append(g.voidCalls, intentID)
	return nil
}

func (g *fakeGateway) CreateRefund(_ context.Context, intentID string, amount *float64, reason string) (*gateway.RefundRef, error) {
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	g.refundCalls = append(g.refundCalls, refundCall{intentID: intentID, amount: amount, reason: reason})
	return &gateway.RefundRef{ID: "re_test", Status: "succeeded"}, nil
}

func (g *fakeGateway) RetrievePaymentIntent(_ context.Context, intentID string) (*gateway.PaymentIntentRef, error) {
	return &gateway.PaymentIntentRef{ID: intentID}, nil
}

func (g *fakeGateway) RetrieveCheckoutSession(_ context.Context, sessionID string) (*gateway.SessionRef, error) {
	return &gateway.SessionRef{ID: sessionID}, nil
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email, name string) (string, error) {
	g.customerCalls++
	return "cus_test", nil
}

// fakeSink collects published domain events.
type fakeSink struct {
	published []events.DomainEvent
}

func (s *fakeSink) Publish(_ context.Context, evt events.DomainEvent) error {
	s.published = append(s.published, evt)
	return nil
}

func (s *fakeSink) Close() error { return nil }

func (s *fakeSink) types() []string {
	out := make([]string, len(s.published))
	for i, evt := range s.published {
		out[i] = evt.Type
	}
	return out
}

// harness bundles a fully wired service over in-memory collaborators.
type harness struct {
	store *fakeStore
	repo  *repository.Repository
	gw    *fakeGateway
	sink  *fakeSink
	cfg   *utils.Config
	svc   *Service
}

func newHarness() *harness {
	store := newFakeStore()
	repo := &repository.Repository{
		Booking:      &fakeBookingRepo{store: store},
		WebhookEvent: &fakeWebhookEventRepo{store: store},
		Resource:     &fakeResourceRepo{resources: make(map[uuid.UUID]*entity.Resource)},
		Customer:     &fakeCustomerRepo{customers: make(map[string]*entity.Customer)},
	}
	gw := &fakeGateway{}
	sink := &fakeSink{}
	cfg := &utils.Config{
		Stripe: utils.StripeConfig{
			WebhookSecret:      "whsec_test",
			WebhookStrict:      false,
			PaymentURLTemplate: "https://pay.test/{booking_id}?secret={client_secret}",
		},
	}

	return &harness{
		store: store,
		repo:  repo,
		gw:    gw,
		sink:  sink,
		cfg:   cfg,
		svc:   NewService(repo, gw, sink, cfg, zap.NewNop()),
	}
}

func (h *harness) addResource(kind entity.BookingKind, price float64) *entity.Resource {
	res := &entity.Resource{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		Kind:       kind,
		Name:       fmt.Sprintf("test %s", kind),
		Price:      price,
		Currency:   "usd",
		Active:     true,
	}
	h.repo.Resource.(*fakeResourceRepo).resources[res.ID] = res
	return res
}

func (h *harness) addBooking(status entity.BookingStatus, pay entity.PaymentStatus, amount float64) *entity.Booking {
	now := time.Now().Add(-time.Hour)
	id := uuid.New()
	pid := "pi_" + id.String()[:8]
	b := &entity.Booking{
		Base: entity.Base{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Kind:              entity.BookingKindEvent,
		ResourceID:        uuid.New(),
		Status:            status,
		PayStatus:         pay,
		Amount:            amount,
		Currency:          "usd",
		CustomerEmail:     "guest@example.com",
		ExternalPaymentID: &pid,
	}
	h.store.put(b)
	return b
}
