package http

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

const detailInvalidBody = "request body is not valid JSON"

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, api.PingResponse{Status: "ok"})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: detailInvalidBody})
		return
	}
	req.Normalize()
	if err := api.Validate(&req); err != nil {
		s.writeError(c, err)
		return
	}

	identity, err := s.credentials.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.RegisterResponse{Message: api.MessageAccountCreated, User: api.NewUserResponse(identity)})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Detail: detailInvalidBody})
		return
	}
	if err := api.Validate(&req); err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.credentials.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.TokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.ExpiresIn.Seconds()),
	})
}

func (s *HTTPServer) me(c *gin.Context) {
	identity, ok := identityFromGin(c)
	if !ok {
		s.writeError(c, common.ErrNoCredential)
		return
	}
	c.JSON(http.StatusOK, api.NewUserResponse(identity))
}
