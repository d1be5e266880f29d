package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manjeshpatagar/mytradingview/internal/store"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

// Resource is the CRUD controller for one content collection.
type Resource[T any, P store.RecordPtr[T]] struct {
	store *store.Store[T, P]
	clock util.Clock
	// daily restricts list to records created on the current calendar day.
	daily bool
}

func NewResource[T any, P store.RecordPtr[T]](s *store.Store[T, P], clock util.Clock, daily bool) *Resource[T, P] {
	return &Resource[T, P]{store: s, clock: clock, daily: daily}
}

func (rc *Resource[T, P]) Create(c *gin.Context) {
	var rec T
	if err := bindStrict(c, &rec); err != nil {
		fail(c, err)
		return
	}
	out, err := rc.store.Create(c.Request.Context(), &rec)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, out)
}

func (rc *Resource[T, P]) List(c *gin.Context) {
	var opts store.ListOptions
	if rc.daily {
		w := util.DayWindow(rc.clock())
		opts.Window = &w
	}
	items, err := rc.store.List(c.Request.Context(), opts)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, len(items), items)
}

func (rc *Resource[T, P]) Get(c *gin.Context) {
	out, err := rc.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

// Update applies the request body as a partial patch: fields it names are
// replaced, everything else keeps its stored value.
func (rc *Resource[T, P]) Update(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, err)
		return
	}
	out, err := rc.store.Update(c.Request.Context(), c.Param("id"), func(rec *T) error {
		return decodeStrict(body, rec)
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (rc *Resource[T, P]) Delete(c *gin.Context) {
	if err := rc.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, rc.store.Name()+" deleted")
}
