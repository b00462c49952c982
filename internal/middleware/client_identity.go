package middleware

import (
	"github.com/gin-gonic/gin"
)

const clientIdentityKey = "client_identity"

// ClientIdentity carries the caller's network identifier and device
// signature for the duration of one request. The raw network address is
// never persisted; the activity service hashes it at capture.
type ClientIdentity struct {
	NetworkAddress  string
	DeviceSignature string
}

// CaptureClientIdentity records the request's network identity in the gin
// context so downstream handlers can feed activity capture.
func CaptureClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIdentityKey, ClientIdentity{
			NetworkAddress:  c.ClientIP(),
			DeviceSignature: c.Request.UserAgent(),
		})
		c.Next()
	}
}

func GetClientIdentity(c *gin.Context) ClientIdentity {
	if v, ok := c.Get(clientIdentityKey); ok {
		if identity, ok := v.(ClientIdentity); ok {
			return identity
		}
	}
	return ClientIdentity{}
}
