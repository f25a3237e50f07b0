package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tradeyard/eventgate/internal/model"
	"github.com/tradeyard/eventgate/internal/repository"
	echo "github.com/labstack/echo/v4"
)

func listDeliveriesHandler(deliveries repository.DeliveryLog) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var result model.DeliveryResult
		if raw := strings.TrimSpace(c.QueryParam("result")); raw != "" {
			tmp := model.DeliveryResult(raw)
			if !tmp.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid result filter"})
			}
			result = tmp
		}

		eventType := strings.TrimSpace(c.QueryParam("event_type"))

		rows, err := deliveries.ListRecent(c.Request().Context(), eventType, result, limit, offset)
		if err != nil {
			c.Logger().Errorf("clickhouse list failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
