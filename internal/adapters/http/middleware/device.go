package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DeviceCookieName identifies the browser whose key-value scope a request uses.
const DeviceCookieName = "ts_device"

// deviceCookieMaxAge keeps a device's data for the length of a school year.
const deviceCookieMaxAge = 400 * 24 * time.Hour

type deviceKey struct{}

// DeviceOptions configures the device cookie.
type DeviceOptions struct {
	Secure bool
}

// Device returns middleware that assigns every browser a stable device id.
// A missing or malformed ts_device cookie is replaced by a fresh UUID.
// POST: DeviceFromContext(r.Context()) is non-empty for the wrapped handler
func Device(opts DeviceOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(DeviceCookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     DeviceCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(deviceCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDevice(r.Context(), id)))
		})
	}
}

// ContextWithDevice returns a context carrying the device id.
func ContextWithDevice(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey{}, id)
}

// DeviceFromContext returns the device id set by Device.
func DeviceFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceKey{}).(string)
	return id, ok && id != ""
}
