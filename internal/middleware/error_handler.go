package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/quota-settlement/internal/render"
	"github.com/anyulbade/quota-settlement/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError translates service and database errors into an HTTP status and
// body. Anything unrecognised is logged and reported as a 500.
func MapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound), errors.Is(err, pgx.ErrNoRows):
		return http.StatusNotFound, ErrorResponse{Error: "settlement period not found"}
	case errors.Is(err, render.ErrUnknownFormat):
		return http.StatusBadRequest, ErrorResponse{Error: "unsupported report format", Details: err.Error()}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57014": // query_canceled
			return http.StatusServiceUnavailable, ErrorResponse{Error: "query canceled"}
		case "53300": // too_many_connections
			return http.StatusServiceUnavailable, ErrorResponse{Error: "database busy"}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
