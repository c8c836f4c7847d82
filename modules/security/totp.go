package security

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/twofakit/pkg/qrcode"
	"github.com/dmitrymomot/twofakit/pkg/totp"
	"github.com/dmitrymomot/twofakit/pkg/twofactor"
)

// AccountResolver extracts the authenticated account from the request.
// Session and login management live outside this module; the resolver is
// the seam where they plug in.
type AccountResolver func(r *http.Request) (twofactor.Account, error)

// TotpService exposes the TOTP second-factor flows over HTTP: the security
// overview the settings page branches on, enrollment with its QR code,
// confirmation, and removal. Password re-confirmation is enforced here,
// before the state machine is touched, according to the account's
// credential kind.
type TotpService struct {
	svc     twofactor.Service
	policy  twofactor.Policy
	account AccountResolver
	qrSize  int
}

// TotpOption configures the TOTP service during construction.
type TotpOption func(*TotpService)

// WithQRSize overrides the rendered QR code edge length in pixels.
func WithQRSize(size int) TotpOption {
	return func(s *TotpService) {
		s.qrSize = size
	}
}

// NewTotpService wires the second-factor state machine and policy to HTTP
// handlers. The resolver supplies the authenticated account per request.
func NewTotpService(svc twofactor.Service, policy twofactor.Policy, account AccountResolver, opts ...TotpOption) *TotpService {
	s := &TotpService{
		svc:     svc,
		policy:  policy,
		account: account,
		qrSize:  256,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *TotpService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.overview)
	r.Post("/totp/enroll", s.enroll)
	r.Get("/totp/qr.png", s.qrImage)
	r.Post("/totp/confirm", s.confirm)
	r.Post("/totp/remove", s.remove)

	return r
}

type overviewResponse struct {
	Has2FA                       bool `json:"has_2fa"`
	RequiresPasswordConfirmation bool `json:"requires_password_confirmation"`
}

// overview reports whether a confirmed factor is in effect so the settings
// page can branch between its Enable and Manage affordances.
func (s *TotpService) overview(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	hasActive, err := s.svc.HasActive(r.Context(), account)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusOK, overviewResponse{
		Has2FA:                       hasActive,
		RequiresPasswordConfirmation: s.policy.RequiresPasswordConfirmation(account),
	})
}

type enrollRequest struct {
	Password string `json:"password"`
}

type enrollResponse struct {
	URI            string `json:"uri"`
	ManualEntryKey string `json:"manual_entry_key"`
}

func (s *TotpService) enroll(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.policy.Authorize(account, req.Password); err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	material, err := s.svc.Enroll(r.Context(), account)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusOK, enrollResponse{
		URI:            material.URI,
		ManualEntryKey: material.ManualEntryKey,
	})
}

// qrImage renders the pending provisioning URI as a PNG. Only a pending
// secret can be rendered; once the factor is active the material is gone.
func (s *TotpService) qrImage(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	material, err := s.svc.PendingMaterial(r.Context(), account)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	png, err := qrcode.Generate(material.URI, s.qrSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type confirmRequest struct {
	Code string `json:"code"`
}

type confirmResponse struct {
	RecoveryCodes []string `json:"recovery_codes,omitempty"`
}

func (s *TotpService) confirm(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	recoveryCodes, err := s.svc.Confirm(r.Context(), account, req.Code)
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	respondJSON(w, http.StatusOK, confirmResponse{RecoveryCodes: recoveryCodes})
}

type removeRequest struct {
	Password string `json:"password"`
}

func (s *TotpService) remove(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}

	var req removeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.policy.Authorize(account, req.Password); err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	if err := s.svc.Remove(r.Context(), account); err != nil {
		respondError(w, statusFor(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps the core's sentinel errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, twofactor.ErrPasswordMismatch):
		return http.StatusForbidden
	case errors.Is(err, twofactor.ErrNoPendingEnrollment),
		errors.Is(err, twofactor.ErrNoActiveSecondFactor):
		return http.StatusNotFound
	case errors.Is(err, twofactor.ErrInvalidCode),
		errors.Is(err, twofactor.ErrInvalidRecoveryCode),
		errors.Is(err, totp.ErrInvalidCodeFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, totp.ErrEntropyUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON tolerates an empty body: SSO accounts legitimately post
// enroll/remove requests with no fields at all.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
