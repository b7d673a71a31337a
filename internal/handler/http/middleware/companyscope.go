package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// CompanyScope rejects requests whose {companyId} path parameter names a
// company other than the one in the caller's token. The token claim stays
// authoritative; the path parameter is only ever an echo of it.
func CompanyScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Missing or invalid token")
			return
		}

		companyID, _ := claims["company_id"].(string)
		if chi.URLParam(r, "companyId") != companyID {
			response.Forbidden(w, "Cannot access another company's data")
			return
		}

		next.ServeHTTP(w, r)
	})
}
