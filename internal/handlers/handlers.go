package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
	"github.com/manjeshpatagar/mytradingview/internal/auth"
	"github.com/manjeshpatagar/mytradingview/internal/middleware"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

// Cookie describes the cookie that carries the access token.
type Cookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Deps is what the HTTP layer needs from the rest of the app.
type Deps struct {
	DB        *gorm.DB
	Auth      *auth.Service
	Clock     util.Clock
	Log       *logrus.Logger
	APIPrefix string
	Cookie    Cookie
}

type Handler struct {
	db     *gorm.DB
	auth   *auth.Service
	clock  util.Clock
	log    *logrus.Logger
	prefix string
	cookie Cookie
	gate   gin.HandlerFunc
}

func New(d Deps) *Handler {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Cookie.Name == "" {
		d.Cookie.Name = "accessToken"
	}
	return &Handler{
		db:     d.DB,
		auth:   d.Auth,
		clock:  d.Clock,
		log:    d.Log,
		prefix: d.APIPrefix,
		cookie: d.Cookie,
		gate:   auth.Gate(d.Auth, d.Cookie.Name),
	}
}

// RegisterRoutes mounts the health check at the root and every API route
// under the configured prefix. Unknown paths and methods get the JSON error
// body too.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		fail(c, apperr.NotFound("Route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		fail(c, apperr.New(apperr.KindMethodNotAllowed, "Method not allowed", nil))
	})

	r.GET("/health", h.health)

	api := r.Group(h.prefix)
	h.registerAuth(api.Group("/auth"))
	for _, b := range bindings {
		b.mount(h, api, b.Policy)
	}
}

func (h *Handler) health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.log.WithError(err).Warn("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, count int, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// fail hands err to ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// decodeStrict decodes a JSON object from body into v. Unknown fields and
// trailing data are rejected.
func decodeStrict(body []byte, v interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return bodyError(errors.New("request body is empty"))
	}
	if trimmed[0] != '{' {
		return bodyError(errors.New("request body must be a JSON object"))
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return bodyError(err)
	}
	if dec.More() {
		return bodyError(errors.New("unexpected data after JSON object"))
	}
	return nil
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	return body, nil
}

func bindStrict(c *gin.Context, v interface{}) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	return decodeStrict(body, v)
}

func bodyError(err error) error {
	return apperr.Validation("Invalid request body", map[string]string{"body": err.Error()})
}

// ErrorHandler renders the last error recorded on the context as the JSON
// error body. Internal errors are logged and never shown to the client.
func ErrorHandler(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		e := apperr.From(c.Errors.Last().Err)
		if e.Kind == apperr.KindInternal {
			log.WithError(e).WithFields(logrus.Fields{
				"request_id": middleware.RequestID(c),
				"path":       c.Request.URL.Path,
			}).Error("request failed")
		}
		writeError(c, e)
	}
}

// Recovery turns a panic into the same 500 body ErrorHandler produces.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		log.WithFields(logrus.Fields{
			"panic":      fmt.Sprint(recovered),
			"request_id": middleware.RequestID(c),
			"path":       c.Request.URL.Path,
		}).Error("recovered from panic")
		writeError(c, apperr.Internal("panic", nil))
		c.Abort()
	})
}

func writeError(c *gin.Context, e *apperr.Error) {
	message := e.Message
	if e.Kind == apperr.KindInternal {
		message = "Internal server error"
	}
	body := gin.H{"success": false, "message": message, "code": e.Kind.String()}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	c.JSON(e.Kind.Status(), body)
}
