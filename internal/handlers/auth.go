package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
	"github.com/manjeshpatagar/mytradingview/internal/auth"
)

func (h *Handler) registerAuth(g *gin.RouterGroup) {
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.gate, h.me)
	g.PATCH("/password", h.gate, h.changePassword)
}

func (h *Handler) register(c *gin.Context) {
	var in auth.RegisterInput
	if err := bindStrict(c, &in); err != nil {
		fail(c, err)
		return
	}
	s, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.setToken(c, s.Token)
	respond(c, http.StatusCreated, s)
}

func (h *Handler) login(c *gin.Context) {
	var in auth.LoginInput
	if err := bindStrict(c, &in); err != nil {
		fail(c, err)
		return
	}
	s, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.setToken(c, s.Token)
	respond(c, http.StatusOK, s)
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	respondMessage(c, http.StatusOK, "Logged out")
}

func (h *Handler) me(c *gin.Context) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, apperr.Unauthorized("You are not logged in", nil))
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *Handler) changePassword(c *gin.Context) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		fail(c, apperr.Unauthorized("You are not logged in", nil))
		return
	}
	var in auth.ChangePasswordInput
	if err := bindStrict(c, &in); err != nil {
		fail(c, err)
		return
	}
	s, err := h.auth.ChangePassword(c.Request.Context(), u, in)
	if err != nil {
		fail(c, err)
		return
	}
	h.setToken(c, s.Token)
	respond(c, http.StatusOK, s)
}

func (h *Handler) setToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}
