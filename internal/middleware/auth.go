package middleware

import (
	"net/http"
	"time"

	"tallerpos/internal/apierror"
	"tallerpos/internal/credential"

	"github.com/gin-gonic/gin"
)

const CredentialKey = "credential"

// Credential extracts the operator's bearer token. The token is not verified
// here (the shop backend does that on every call); a missing token or a JWT
// whose exp has passed is rejected before any backend traffic.
func Credential() gin.HandlerFunc {
	return CredentialAt(time.Now)
}

func CredentialAt(now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := credential.FromAuthorizationHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCode("no_autenticado", "Autenticacion requerida"))
			return
		}
		if cred.Expired(now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCode("sesion_expirada", "Token expirado, inicie sesion nuevamente"))
			return
		}
		c.Set(CredentialKey, cred)
		c.Next()
	}
}

// GetCredential returns the credential stored by Credential, or the zero
// value (which the backend client refuses) when the route is unprotected.
func GetCredential(c *gin.Context) credential.Credential {
	cred, _ := c.Get(CredentialKey)
	v, _ := cred.(credential.Credential)
	return v
}
