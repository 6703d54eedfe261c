package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/service/exchange"
	"github.com/ghalbir/trading-client/internal/service/identity"
	"github.com/ghalbir/trading-client/internal/service/lifecycle"
	"github.com/ghalbir/trading-client/internal/service/notification"
	"github.com/ghalbir/trading-client/internal/service/orderform"
	"github.com/ghalbir/trading-client/internal/service/session"
	"github.com/shopspring/decimal"
)

// App is the explicitly-owned state of one user session: session store, order
// form, lifecycle manager, and notification queue, plus the collaborators
// they talk to. The view layer is its only caller; every user action is a
// method here returning a result or error.
type App struct {
	identity entity.IdentityProvider
	prices   entity.PriceSource
	filler   *exchange.Filler

	pair        string
	fallbackRef decimal.Decimal

	Session       *session.Store
	Lifecycle     *lifecycle.Manager
	Notifications *notification.Queue

	mu       sync.Mutex
	form     *orderform.Engine
	balances map[string]decimal.Decimal
}

type Config struct {
	Pair                   string
	FallbackReferencePrice decimal.Decimal
	Identity               entity.IdentityProvider
	Prices                 entity.PriceSource
	Lifecycle              *lifecycle.Manager
	Notifications          *notification.Queue
	Filler                 *exchange.Filler
	// Balances seeds the demo wallet; a real deployment would read these
	// from the account collaborator.
	Balances map[string]decimal.Decimal
}

func NewApp(cfg Config) *App {
	balances := make(map[string]decimal.Decimal, len(cfg.Balances))
	for asset, amount := range cfg.Balances {
		balances[asset] = amount
	}

	return &App{
		identity:      cfg.Identity,
		prices:        cfg.Prices,
		filler:        cfg.Filler,
		pair:          cfg.Pair,
		fallbackRef:   cfg.FallbackReferencePrice,
		Session:       session.NewStore(),
		Lifecycle:     cfg.Lifecycle,
		Notifications: cfg.Notifications,
		form:          orderform.NewEngine(cfg.Pair),
		balances:      balances,
	}
}

// Form returns the live order form engine.
func (a *App) Form() *orderform.Engine {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.form
}

func (a *App) Login(ctx context.Context, email, password string) (*entity.AuthResult, error) {
	result, err := a.identity.Login(ctx, email, password)
	if err != nil {
		a.Notifications.Push("Login failed", entity.SeverityError)
		return nil, err
	}

	a.Session.Authenticate(result.Profile)
	a.Notifications.Push("Login successful", entity.SeveritySuccess)

	return result, nil
}

func (a *App) Register(ctx context.Context, email, password, confirmPassword, fullName string) (*entity.AuthResult, error) {
	result, err := a.identity.Register(ctx, email, password, confirmPassword, fullName)
	if err != nil {
		a.Notifications.Push(registerFailureMessage(err), entity.SeverityError)
		return nil, err
	}

	a.Session.Authenticate(result.Profile)
	a.Notifications.Push("Registration successful", entity.SeveritySuccess)

	return result, nil
}

// ValidateToken restores a stored credential on startup.
func (a *App) ValidateToken(ctx context.Context, token string) error {
	profile, err := a.identity.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	a.Session.Authenticate(*profile)

	return nil
}

// Logout tears the app state back down to its initial state: session
// cleared, tracked orders dropped, form re-created.
func (a *App) Logout(ctx context.Context, token string) error {
	if token != "" {
		if err := a.identity.Logout(ctx, token); err != nil {
			return err
		}
	}

	a.Session.Clear()
	a.Lifecycle.Reset()
	a.Notifications.Reset()

	a.mu.Lock()
	a.form = orderform.NewEngine(a.pair)
	a.mu.Unlock()

	a.Notifications.Push("Logout successful", entity.SeveritySuccess)

	return nil
}

// ApplyPercent sizes the order amount from the wallet balances. The
// reference price for buys prefers the entered price, then the live best
// price, then the configured fallback.
func (a *App) ApplyPercent(percent int) error {
	base, quote := splitPair(a.pair)

	ref := a.fallbackRef
	if price, ok := a.prices.BestPrice(a.pair); ok {
		ref = price
	}

	return a.Form().ApplyPercent(percent, a.balance(base), a.balance(quote), ref)
}

// PlaceOrder validates the form, submits the request, and on success resets
// the form and reports the outcome. Failures surface as notifications and
// leave the form untouched.
func (a *App) PlaceOrder(ctx context.Context) (*entity.Order, error) {
	form := a.Form()

	req, err := form.Validate()
	if err != nil {
		a.Notifications.Push(validationMessage(err), entity.SeverityError)
		return nil, err
	}

	order, err := a.Lifecycle.Submit(ctx, req, a.Session)
	if err != nil {
		a.Notifications.Push(submitFailureMessage(err), entity.SeverityError)
		return nil, err
	}

	form.Reset()
	a.Notifications.Push(placedMessage(req.Side), entity.SeveritySuccess)

	if a.filler != nil {
		a.filler.Schedule(*order)
	}

	return order, nil
}

func (a *App) CancelOrder(orderID string) error {
	if err := a.Lifecycle.Cancel(orderID); err != nil {
		a.Notifications.Push("Unable to cancel order", entity.SeverityError)
		return err
	}

	a.Notifications.Push("Order cancelled", entity.SeverityInfo)

	return nil
}

func (a *App) Balances() map[string]decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]decimal.Decimal, len(a.balances))
	for asset, amount := range a.balances {
		out[asset] = amount
	}

	return out
}

func (a *App) balance(asset string) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balances[asset]
}

func splitPair(pair string) (base, quote string) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 {
		return pair, ""
	}

	return parts[0], parts[1]
}

func placedMessage(side entity.OrderSide) string {
	if side == entity.OrderSideSell {
		return "Sell order placed successfully"
	}

	return "Buy order placed successfully"
}

func validationMessage(err error) string {
	switch err {
	case orderform.ErrInvalidAmount:
		return "Please enter a valid amount"
	case orderform.ErrInvalidPrice:
		return "Please enter a valid price"
	default:
		return "Order could not be validated"
	}
}

func submitFailureMessage(err error) string {
	if err == lifecycle.ErrNotAuthenticated {
		return "Please login to place orders"
	}

	return "Order submission failed"
}

func registerFailureMessage(err error) string {
	if errors.Is(err, identity.ErrPasswordMismatch) {
		return "Passwords do not match"
	}

	return "Registration failed"
}
