package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// writeError maps a service outcome to a status code and a {"detail"} body.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var (
		validation *api.ValidationError
		conflict   *common.ConflictError
		unauth     *common.UnauthenticatedError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: validation.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, api.ErrorResponse{Detail: conflict.Error()})
	case errors.As(err, &unauth):
		c.Header("WWW-Authenticate", common.BearerScheme)
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Detail: unauth.Reason})
	case errors.Is(err, common.ErrNoCredential):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Detail: common.ReasonNotAuthenticated})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Detail: "internal error"})
	}
}
