package tcapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurbos/tcgtracker/datastore"
)

const HelloMessage = "Hello world!"

// CatalogReader is the read side of the persistence gateway served over HTTP.
type CatalogReader interface {
	ListBlockSets(ctx context.Context) ([]datastore.BlockSet, error)
	FindCardByName(ctx context.Context, name string) (*datastore.Card, error)
	ListCardPrints(ctx context.Context, cardId int) ([]datastore.CardPrint, error)
	CountRows(ctx context.Context) (datastore.RowCounts, error)
}

type handler struct {
	store CatalogReader
}

// NewRouter returns a gin engine with CORS and every route registered.
// An empty corsOrigin leaves CORS off.
func NewRouter(store CatalogReader, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if corsOrigin != "" {
		r.Use(newCors(corsOrigin))
	}
	RegisterRoutes(r, store)
	return r
}

func RegisterRoutes(r *gin.Engine, store CatalogReader) {
	h := &handler{store: store}

	r.GET("/", Hello)
	r.GET("/block-sets", h.listBlockSets)
	r.GET("/cards/:name", h.getCard)
	r.GET("/stats", h.stats)
}

// Hello is the health endpoint.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, HelloMessage)
}

func (h *handler) listBlockSets(c *gin.Context) {
	sets, err := h.store.ListBlockSets(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to load block sets")
		return
	}
	c.JSON(http.StatusOK, toBlockSets(sets))
}

func (h *handler) getCard(c *gin.Context) {
	ctx := c.Request.Context()
	card, err := h.store.FindCardByName(ctx, c.Param("name"))
	if err != nil {
		writeError(c, err, "Failed to load card")
		return
	}
	prints, err := h.store.ListCardPrints(ctx, card.Id)
	if err != nil {
		writeError(c, err, "Failed to load card prints")
		return
	}
	c.JSON(http.StatusOK, toCard(card, prints))
}

func (h *handler) stats(c *gin.Context) {
	counts, err := h.store.CountRows(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to count rows")
		return
	}
	c.JSON(http.StatusOK, counts)
}

func writeError(c *gin.Context, err error, msg string) {
	if errors.Is(err, datastore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
