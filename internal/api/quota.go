package api

import (
	"net/http"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"
)

// quotaMiddleware limits mutating requests per caller. Reads are never counted.
func (s *HTTPServer) quotaMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.svc.Quota == nil || !s.quota.Enabled || !isMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := s.svc.Quota.Allow(r.Context(), quotaKey(r), s.quota.Requests, s.quota.Window())
		if err != nil {
			// лимитер недоступен - пропускаем запрос
			s.logger.Warn().Err(err).Msg("write quota check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncQuotaRejection()
			s.writeDomainError(w, r, domain.ErrRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func quotaKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(models.HeaderSharerUserID)); id != "" {
		return "user:" + id
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return "addr:" + host
}
