package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/calmpath-backend/internal/http/response"
	"github.com/yungbote/calmpath-backend/internal/platform/apierr"
	"github.com/yungbote/calmpath-backend/internal/platform/ctxutil"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/services"
)

// classify tags a service error with the HTTP status and code it maps to. Store
// failures keep their cause out of the response body.
func classify(err error) error {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, services.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, services.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, "unauthorized", services.ErrUnauthorized)
	case errors.Is(err, services.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", services.ErrNotFound)
	case errors.Is(err, services.ErrStoreUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "store_unavailable", services.ErrStoreUnavailable)
	}
	return err
}

func respondServiceError(c *gin.Context, log *logger.Logger, err error, fallbackCode string) {
	ae := apierr.From(classify(err), fallbackCode)
	if ae.Status >= http.StatusInternalServerError && log != nil {
		log.Error("Request failed", append([]any{"code", ae.Code, "error", err}, ctxutil.LogFields(c.Request.Context())...)...)
		if ae.Status == http.StatusInternalServerError {
			ae = apierr.New(ae.Status, ae.Code, errors.New("internal error"))
		}
	}
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}

func requireIdentity(c *gin.Context) (identity.Identity, bool) {
	who, ok := identity.FromContext(c.Request.Context())
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", services.ErrUnauthorized)
		return identity.Identity{}, false
	}
	return who, true
}
