package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/models"
)

// RankChecker runs a single rank check.
type RankChecker interface {
	Check(ctx context.Context, req *models.CheckRequest, progress func(page, pages int)) (*models.CheckResult, error)
}

// Check returns a handler for POST /api/v1/check.
//
// The check runs inside the request, so clients must allow for the whole
// walk; long checks should go through POST /api/v1/jobs instead.
func Check(rc RankChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CheckRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, models.NewCheckError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		result, err := rc.Check(c.Request.Context(), &req, nil)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.CheckResponse{
			Success: true,
			Result:  result,
		})
	}
}

// respondError maps a CheckError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var checkErr *models.CheckError
	if !errors.As(err, &checkErr) {
		checkErr = models.NewCheckError(models.ErrCodeInternal, err.Error(), err)
	}

	c.AbortWithStatusJSON(mapErrorToStatus(checkErr), models.CheckResponse{
		Success: false,
		Error:   checkErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.CheckError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNetwork:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeJobNotFound:
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}
