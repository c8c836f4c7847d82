package security

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which second-factor methods to mount in the
// security module. Each method is optional and only mounted if provided.
type RouterOptions struct {
	Totp Mountable
}

// Router creates the account-security router.
//
// Example:
//
//	totpSvc := security.NewTotpService(svc, policy, resolveAccount)
//
//	r := chi.NewRouter()
//	r.Mount("/settings/security", security.Router(security.RouterOptions{
//	    Totp: totpSvc,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Totp != nil {
		r.Mount("/", opts.Totp.Handle())
	}

	return r
}
