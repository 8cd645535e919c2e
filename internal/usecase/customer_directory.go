package usecase

import (
	"context"
	"fmt"
	"time"

	"booking-payments/internal/data/entity"
	"booking-payments/internal/data/repository"
	"booking-payments/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerDirectory resolves an email address to a gateway customer
// reference, creating the customer on both sides when unknown.
type CustomerDirectory interface {
	EnsureCustomer(ctx context.Context, email, name string) (string, error)
}

type customerDirectory struct {
	repo repository.CustomerRepository
	gw   gateway.Gateway
	log  *zap.Logger
}

func NewCustomerDirectory(repo repository.CustomerRepository, gw gateway.Gateway, log *zap.Logger) CustomerDirectory {
	return &customerDirectory{
		repo: repo,
		gw:   gw,
		log:  log.With(zap.String("service", "customer_directory")),
	}
}

func (d *customerDirectory) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	existing, err := d.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find customer: %w", err)
	}
	if existing != nil {
		return existing.GatewayCustomerID, nil
	}

	ref, err := d.gw.CreateCustomer(ctx, email, name)
	if err != nil {
		return "", fmt.Errorf("create gateway customer: %w", err)
	}

	customer := &entity.Customer{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Email:             email,
		Name:              name,
		GatewayCustomerID: ref,
	}
	if err := d.repo.Create(ctx, customer); err != nil {
		// The gateway record exists either way; a retry will reuse it
		// once the row lands.
		d.log.Error("Failed to persist customer", zap.String("email", email), zap.Error(err))
		return "", fmt.Errorf("persist customer: %w", err)
	}

	d.log.Info("Customer registered",
		zap.String("email", email),
		zap.String("gateway_customer_id", ref))

	return ref, nil
}
