package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/backend-template/errors"
	"github.com/kbukum/backend-template/resilience"
)

// Throttle limits requests per client address. Rejected requests get a 429
// with a Retry-After header. A nil or disabled limiter passes everything.
func Throttle(l *resilience.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		ok, wait := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abort(c, apperrors.Throttled(wait))
			return
		}
		c.Next()
	}
}
