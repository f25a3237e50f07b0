package http

import (
	"net/http"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/tradeyard/eventgate/internal/event"
	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/storage"
	echo "github.com/labstack/echo/v4"
)

// Listing events fanned out after each mutation commits.
const (
	eventListingCreated = "listing.created"
	eventListingUpdated = "listing.updated"
	eventListingDeleted = "listing.deleted"
)

type listingReq struct {
	SellerID string `json:"seller_id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
	Status   string `json:"status,omitempty"`
}

func (r *listingReq) validate() (model.Listing, string) {
	r.Title = strings.TrimSpace(r.Title)
	r.SellerID = strings.TrimSpace(r.SellerID)
	if r.Title == "" || r.SellerID == "" {
		return model.Listing{}, "seller_id and title are required"
	}
	if r.Price < 0 {
		return model.Listing{}, "price must not be negative"
	}
	status, ok := model.ParseListingStatus(r.Status)
	if !ok {
		return model.Listing{}, "invalid status"
	}
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "USD"
	}
	return model.Listing{
		SellerID: r.SellerID,
		Title:    r.Title,
		Price:    r.Price,
		Currency: currency,
		Status:   status,
	}, ""
}

// publishListing fans the mutation out after it is durably committed.
// Publisher failures are operator-visible only; the API response is already
// decided by the storage outcome.
func publishListing(c echo.Context, pub *event.Publisher, eventType string, listing *model.Listing) {
	if err := pub.Publish(c.Request().Context(), eventType, listing, true); err != nil {
		log.Errorf("publish %s failed: %v", eventType, err)
	}
}

func createListingHandler(store storage.Backend, pub *event.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req listingReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		listing, msg := req.validate()
		if msg != "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
		}

		created, err := store.Create(c.Request().Context(), &listing)
		if err != nil {
			c.Logger().Errorf("create listing failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		out := created.(*model.Listing)
		publishListing(c, pub, eventListingCreated, out)
		return c.JSON(http.StatusCreated, out)
	}
}

func getListingHandler(store storage.Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := store.Read(c.Request().Context(), model.KindListing, c.Param("id"))
		if err != nil {
			c.Logger().Errorf("read listing failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if rec == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}
		return c.JSON(http.StatusOK, rec)
	}
}

func listListingsHandler(store storage.Backend) echo.HandlerFunc {
	return func(c echo.Context) error {
		recs, err := store.List(c.Request().Context(), model.KindListing)
		if err != nil {
			c.Logger().Errorf("list listings failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(recs),
			"results": recs,
		})
	}
}

func updateListingHandler(store storage.Backend, pub *event.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req listingReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		listing, msg := req.validate()
		if msg != "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
		}

		ctx := c.Request().Context()
		existing, err := store.Read(ctx, model.KindListing, c.Param("id"))
		if err != nil {
			c.Logger().Errorf("read listing failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if existing == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}

		prev := existing.(*model.Listing)
		listing.ID = prev.ID
		listing.CreatedAt = prev.CreatedAt

		updated, err := store.Update(ctx, &listing)
		if err != nil {
			c.Logger().Errorf("update listing failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		out := updated.(*model.Listing)
		publishListing(c, pub, eventListingUpdated, out)
		return c.JSON(http.StatusOK, out)
	}
}

func deleteListingHandler(store storage.Backend, pub *event.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		rec, err := store.Read(ctx, model.KindListing, c.Param("id"))
		if err != nil {
			c.Logger().Errorf("read listing failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if rec == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		}

		if err := store.Delete(ctx, model.KindListing, c.Param("id")); err != nil {
			c.Logger().Errorf("delete listing failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		publishListing(c, pub, eventListingDeleted, rec.(*model.Listing))
		return c.NoContent(http.StatusNoContent)
	}
}
