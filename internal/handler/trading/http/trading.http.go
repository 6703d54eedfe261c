package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ghalbir/trading-client/internal/client"
	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/ghalbir/trading-client/internal/service/identity"
	"github.com/ghalbir/trading-client/internal/service/lifecycle"
	"github.com/ghalbir/trading-client/internal/service/orderform"
	"github.com/ghalbir/trading-client/internal/util"
	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
)

// Handler exposes the trading client to the browser view layer. Every
// endpoint is a thin translation between JSON and an App method; no business
// rules live here.
type Handler struct {
	app      *client.App
	router   *client.Router
	identity *identity.Service
}

func NewTradingHTTPHandler(app *client.App, router *client.Router, identitySvc *identity.Service) *Handler {
	return &Handler{
		app:      app,
		router:   router,
		identity: identitySvc,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/trading/v1/auth/register", h.RegisterUser)
	mux.HandleFunc("/trading/v1/auth/login", h.Login)
	mux.HandleFunc("/trading/v1/auth/logout", h.Logout)
	mux.HandleFunc("/trading/v1/auth/session", h.Session)
	mux.HandleFunc("/trading/v1/auth/password", h.ChangePassword)
	mux.HandleFunc("/trading/v1/auth/2fa/setup", h.Setup2FA)
	mux.HandleFunc("/trading/v1/auth/2fa/verify", h.Verify2FA)
	mux.HandleFunc("/trading/v1/form", h.Form)
	mux.HandleFunc("/trading/v1/orders", h.Orders)
	mux.HandleFunc("/trading/v1/orders/cancel", h.CancelOrder)
	mux.HandleFunc("/trading/v1/pages", h.Page)
	mux.HandleFunc("/trading/v1/notifications", h.Notifications)
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string             `json:"token"`
	Profile entity.UserProfile `json:"profile"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	defer r.Body.Close()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	result, err := h.app.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrPasswordMismatch):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "passwords do not match"})
		case errors.Is(err, identity.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "email already registered"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "registration failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, Profile: result.Profile})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	defer r.Body.Close()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	result, err := h.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid email or password"})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, Profile: result.Profile})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	if err := h.app.Logout(r.Context(), bearerToken(r)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid session token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

// Session validates a stored credential and restores the app session, the
// startup path for a returning browser tab.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing session token"})
		return
	}

	if err := h.app.ValidateToken(r.Context(), token); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid session token"})
		return
	}

	profile, _ := h.app.Session.CurrentProfile()
	writeJSON(w, http.StatusOK, profile)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	profile, ok := h.app.Session.CurrentProfile()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "login required"})
		return
	}

	defer r.Body.Close()

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	err := h.identity.ChangePassword(r.Context(), profile.Email, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrPasswordMismatch):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "passwords do not match"})
		case errors.Is(err, identity.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "current password is incorrect"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "password change failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "password_changed"})
}

func (h *Handler) Setup2FA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	profile, ok := h.app.Session.CurrentProfile()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "login required"})
		return
	}

	setup, err := h.identity.Setup2FA(r.Context(), profile.Email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "2fa setup failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret": setup.Secret,
		"url":    setup.URL,
	})
}

type Verify2FARequest struct {
	Code string `json:"code"`
}

func (h *Handler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	profile, ok := h.app.Session.CurrentProfile()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "login required"})
		return
	}

	defer r.Body.Close()

	var req Verify2FARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if err := h.identity.Verify2FA(r.Context(), profile.Email, req.Code); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "please enter a valid 6-digit code"})
		return
	}

	// The stored session predates the flag flip.
	refreshed := profile
	refreshed.TwoFactorEnabled = true
	h.app.Session.Authenticate(refreshed)

	writeJSON(w, http.StatusOK, map[string]any{"status": "2fa_enabled"})
}

// FormUpdateRequest carries one or more form edits. Absent fields are left
// untouched.
type FormUpdateRequest struct {
	Side    null.String `json:"side"`
	Kind    null.String `json:"kind"`
	Price   null.String `json:"price"`
	Amount  null.String `json:"amount"`
	Percent null.Int    `json:"percent"`
}

type FormResponse struct {
	Pair          string `json:"pair"`
	Side          string `json:"side"`
	Kind          string `json:"kind"`
	PriceInput    string `json:"price_input"`
	AmountInput   string `json:"amount_input"`
	TotalDisplay  string `json:"total_display"`
	PriceEditable bool   `json:"price_editable"`
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, mapFormSnapshot(h.app.Form().Snapshot()))
	case http.MethodPost:
		h.updateForm(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (h *Handler) updateForm(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req FormUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	form := h.app.Form()

	if req.Side.Valid {
		if err := form.SetSide(entity.OrderSide(strings.ToUpper(req.Side.String))); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}
	if req.Kind.Valid {
		if err := form.SetKind(entity.OrderKind(strings.ToUpper(req.Kind.String))); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}
	if req.Price.Valid {
		if err := form.SetPrice(req.Price.String); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}
	if req.Amount.Valid {
		if err := form.SetAmount(req.Amount.String); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}
	if req.Percent.Valid {
		if err := h.app.ApplyPercent(int(req.Percent.Int64)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, mapFormSnapshot(form.Snapshot()))
}

type OrderResponse struct {
	ID           string  `json:"id"`
	Pair         string  `json:"pair"`
	Kind         string  `json:"kind"`
	Side         string  `json:"side"`
	Price        *string `json:"price,omitempty"`
	Amount       string  `json:"amount"`
	FilledAmount string  `json:"filled_amount"`
	Total        *string `json:"total,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

type OrderListingResponse struct {
	LoginRequired bool            `json:"login_required"`
	Orders        []OrderResponse `json:"orders"`
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listOrders(w, r)
	case http.MethodPost:
		h.placeOrder(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	pair := strings.TrimSpace(r.URL.Query().Get("pair"))

	var listing entity.OrderListing
	if r.URL.Query().Get("scope") == "history" {
		listing = h.app.Lifecycle.ListHistory(pair, h.app.Session)
	} else {
		listing = h.app.Lifecycle.ListOpenOrders(pair, h.app.Session)
	}

	writeJSON(w, http.StatusOK, mapOrderListing(listing))
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.app.PlaceOrder(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, orderform.ErrInvalidAmount), errors.Is(err, orderform.ErrInvalidPrice):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		case errors.Is(err, lifecycle.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "login required"})
		case errors.Is(err, lifecycle.ErrSubmissionFailed):
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": "order submission failed"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, mapOrder(*order))
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	defer r.Body.Close()

	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if err := h.app.CancelOrder(req.OrderID); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "order not found"})
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "order is no longer open"})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "cancelled"})
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	page := strings.TrimSpace(r.URL.Query().Get("name"))

	data, err := h.router.LoadPage(page)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown page"})
		return
	}

	writeJSON(w, http.StatusOK, mapPageData(data))
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, h.app.Notifications.Active())
}

type PageResponse struct {
	Page          string                `json:"page"`
	Tickers       []entity.Ticker       `json:"tickers,omitempty"`
	Form          *FormResponse         `json:"form,omitempty"`
	OpenOrders    *OrderListingResponse `json:"open_orders,omitempty"`
	History       *OrderListingResponse `json:"history,omitempty"`
	Balances      map[string]string     `json:"balances,omitempty"`
	Notifications []entity.Notification `json:"notifications"`
}

func mapPageData(data *client.PageData) PageResponse {
	resp := PageResponse{
		Page:          data.Page,
		Tickers:       data.Tickers,
		Notifications: data.Notifications,
	}

	if data.Form != nil {
		form := mapFormSnapshot(*data.Form)
		resp.Form = &form
	}
	if data.OpenOrders != nil {
		listing := mapOrderListing(*data.OpenOrders)
		resp.OpenOrders = &listing
	}
	if data.History != nil {
		listing := mapOrderListing(*data.History)
		resp.History = &listing
	}
	if data.Balances != nil {
		resp.Balances = make(map[string]string, len(data.Balances))
		for asset, amount := range data.Balances {
			resp.Balances[asset] = util.FormatAmount(amount)
		}
	}

	return resp
}

func mapFormSnapshot(snap orderform.Snapshot) FormResponse {
	return FormResponse{
		Pair:          snap.Pair,
		Side:          string(snap.Side),
		Kind:          string(snap.Kind),
		PriceInput:    snap.PriceInput,
		AmountInput:   snap.AmountInput,
		TotalDisplay:  snap.TotalDisplay,
		PriceEditable: snap.PriceEditable,
	}
}

func mapOrderListing(listing entity.OrderListing) OrderListingResponse {
	resp := OrderListingResponse{
		LoginRequired: listing.LoginRequired,
		Orders:        make([]OrderResponse, 0, len(listing.Orders)),
	}
	for _, order := range listing.Orders {
		resp.Orders = append(resp.Orders, mapOrder(order))
	}

	return resp
}

func mapOrder(order entity.Order) OrderResponse {
	var price *string
	if order.LimitPrice.IsPositive() {
		v := util.FormatAmount(order.LimitPrice)
		price = &v
	}

	var total *string
	if order.Total.IsPositive() {
		v := util.FormatAmount(order.Total)
		total = &v
	}

	return OrderResponse{
		ID:           order.ID,
		Pair:         order.Pair,
		Kind:         string(order.Kind),
		Side:         string(order.Side),
		Price:        price,
		Amount:       util.FormatAmount(order.Amount),
		FilledAmount: util.FormatAmount(order.FilledAmount),
		Total:        total,
		Status:       string(order.Status),
		CreatedAt:    order.CreatedAt.UnixMilli(),
		UpdatedAt:    order.UpdatedAt.UnixMilli(),
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}

	return header
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
