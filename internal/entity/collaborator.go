package entity

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderGateway is the order-execution collaborator. SubmitOrder is the sole
// network-shaped boundary of the core: exactly one outstanding request per
// submission, no client-side retry.
type OrderGateway interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (*OrderAck, error)
}

// PriceSource supplies the current best price for a pair.
type PriceSource interface {
	BestPrice(pair string) (decimal.Decimal, bool)
}

// IdentityProvider issues and validates the opaque session credential.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password, confirmPassword, fullName string) (*AuthResult, error)
	ValidateToken(ctx context.Context, token string) (*UserProfile, error)
	Logout(ctx context.Context, token string) error
}

// AuthResult is a successful login/registration outcome.
type AuthResult struct {
	Token   string
	Profile UserProfile
}

type Publisher interface {
	JetstreamEventInit(ctx context.Context) error
}

type Subscriber interface {
	JetstreamEventSubscribe(ctx context.Context) error
}
