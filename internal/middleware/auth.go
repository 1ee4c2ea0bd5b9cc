package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/auth"
	"github.com/yukikurage/enterprise-core-api/internal/authz"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
	"github.com/yukikurage/enterprise-core-api/internal/tenancy"
)

const bearerPrefix = "Bearer "

// RequireAuth verifies the bearer token and stores the resulting caller in
// the request context. The presenter never learns why a token was refused.
func RequireAuth(codec *auth.Codec, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			obs.RecordTokenVerification(obs.TokenMissing)
			apierrors.Unauthorized(c, "")
			return
		}

		caller, err := codec.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			outcome := tokenOutcome(err)
			obs.RecordTokenVerification(outcome)
			log.WithFields(logrus.Fields{
				"reason":     outcome,
				"request_id": c.GetString(constants.ContextKeyRequestID),
			}).Info("Rejected bearer token")
			apierrors.Respond(c, log, err)
			return
		}

		obs.RecordTokenVerification(obs.TokenValid)
		c.Set(constants.ContextKeyCaller, caller)
		c.Next()
	}
}

// CurrentCaller returns the caller stored by RequireAuth, or the anonymous
// caller when the request was not authenticated.
func CurrentCaller(c *gin.Context) tenancy.Caller {
	v, ok := c.Get(constants.ContextKeyCaller)
	if !ok {
		return tenancy.Anonymous()
	}
	caller, ok := v.(tenancy.Caller)
	if !ok {
		return tenancy.Anonymous()
	}
	return caller
}

// RequirePermission rejects the request unless the caller satisfies every
// requirement. Requirements containing a dot are permission codes; anything
// else names a registered policy.
func RequirePermission(engine *authz.Engine, log logrus.FieldLogger, requirements ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := engine.Authorize(CurrentCaller(c), requirements...); err != nil {
			apierrors.Respond(c, log, err)
			return
		}
		c.Next()
	}
}

func tokenOutcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return obs.TokenExpired
	case errors.Is(err, auth.ErrBadSignature):
		return obs.TokenBadSignature
	default:
		return obs.TokenMalformed
	}
}
