package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/webhook"
	echo "github.com/labstack/echo/v4"
)

type subscriptionReq struct {
	TargetURL string            `json:"target_url"`
	EventType string            `json:"event_type"`
	OwnerID   string            `json:"owner_id,omitempty"`
	IsActive  *bool             `json:"is_active,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// subscriptionResp deliberately has no secret field: the secret is returned
// exactly once, at creation, and never echoed again.
type subscriptionResp struct {
	ID        string            `json:"id"`
	TargetURL string            `json:"target_url"`
	EventType string            `json:"event_type"`
	OwnerID   string            `json:"owner_id,omitempty"`
	IsActive  bool              `json:"is_active"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toSubscriptionResp(sub *model.Subscription) subscriptionResp {
	return subscriptionResp{
		ID:        sub.ID,
		TargetURL: sub.TargetURL,
		EventType: sub.EventType,
		OwnerID:   sub.OwnerID,
		IsActive:  sub.IsActive,
		Headers:   sub.Headers,
		CreatedAt: sub.CreatedAt,
		UpdatedAt: sub.UpdatedAt,
	}
}

func createSubscriptionHandler(svc *webhook.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req subscriptionReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		sub, err := svc.Create(c.Request().Context(), model.Subscription{
			TargetURL: req.TargetURL,
			EventType: req.EventType,
			OwnerID:   req.OwnerID,
			IsActive:  active,
			Headers:   req.Headers,
		})
		if err != nil {
			if errors.Is(err, webhook.ErrInvalid) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			c.Logger().Errorf("create subscription failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		// The one and only secret handout.
		return c.JSON(http.StatusCreated, map[string]any{
			"subscription": toSubscriptionResp(sub),
			"secret":       sub.Secret,
		})
	}
}

func getSubscriptionHandler(svc *webhook.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		sub, err := svc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, webhook.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
			}
			c.Logger().Errorf("get subscription failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, toSubscriptionResp(sub))
	}
}

func listSubscriptionsHandler(svc *webhook.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		subs, err := svc.List(c.Request().Context())
		if err != nil {
			c.Logger().Errorf("list subscriptions failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		out := make([]subscriptionResp, 0, len(subs))
		for _, sub := range subs {
			out = append(out, toSubscriptionResp(sub))
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(out),
			"results": out,
		})
	}
}

func updateSubscriptionHandler(svc *webhook.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req subscriptionReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		sub, err := svc.Update(c.Request().Context(), model.Subscription{
			ID:        c.Param("id"),
			TargetURL: req.TargetURL,
			EventType: req.EventType,
			OwnerID:   req.OwnerID,
			IsActive:  active,
			Headers:   req.Headers,
		})
		if err != nil {
			if errors.Is(err, webhook.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
			}
			if errors.Is(err, webhook.ErrInvalid) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			c.Logger().Errorf("update subscription failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.JSON(http.StatusOK, toSubscriptionResp(sub))
	}
}

func deleteSubscriptionHandler(svc *webhook.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
			c.Logger().Errorf("delete subscription failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
