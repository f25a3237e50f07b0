package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tradeyard/eventgate/internal/event"
	"github.com/tradeyard/eventgate/internal/realtime"
	"github.com/tradeyard/eventgate/internal/webhook"
	echo "github.com/labstack/echo/v4"
)

type publishReq struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Realtime  bool            `json:"realtime"`
}

func publishEventHandler(pub *event.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req publishReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if err := webhook.ValidateEventType(req.EventType); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		if len(req.Data) == 0 || !json.Valid(req.Data) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "data must be valid JSON"})
		}

		if err := pub.Publish(c.Request().Context(), req.EventType, req.Data, req.Realtime); err != nil {
			c.Logger().Errorf("publish %s failed: %v", req.EventType, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "publish failed"})
		}

		return c.JSON(http.StatusAccepted, map[string]any{
			"published":  true,
			"event_type": req.EventType,
		})
	}
}

// streamEventsHandler relays the realtime channel to the client as
// server-sent events. The subscription is released when the client
// disconnects; the poll loop inside Listen notices cancellation.
func streamEventsHandler(sub *realtime.Subscriber) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sub == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "realtime disabled"})
		}

		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set(echo.HeaderCacheControl, "no-store")
		res.Header().Set(echo.HeaderConnection, "keep-alive")
		res.WriteHeader(http.StatusOK)
		res.Flush()

		err := sub.Listen(c.Request().Context(), func(payload []byte) {
			fmt.Fprintf(res, "data: %s\n\n", payload)
			res.Flush()
		})
		if err != nil {
			c.Logger().Errorf("event stream closed with error: %v", err)
		}
		return nil
	}
}
