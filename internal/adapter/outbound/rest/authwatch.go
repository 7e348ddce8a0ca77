package rest

import (
	"context"
	"net/http"

	"github.com/quillpress/quillctl/internal/domain/session"
)

// Invalidator receives forced-logout signals from the response watcher.
type Invalidator interface {
	HandleInvalidation(ctx context.Context, reason session.Reason)
}

// WatchAuth installs the response hook that turns auth failures into session
// invalidations: 401 means the token no longer authenticates, 403 means the
// action is not permitted. The response itself still reaches the caller
// unchanged, so per-call error handling keeps working.
//
// The returned handle must be removed when the consumer goes away, typically
// via Manager.OnClose, so a later consumer does not stack a second watcher.
func WatchAuth(f *Facade, inv Invalidator) Registration {
	return f.OnResponse(func(resp *http.Response, err error) {
		if resp == nil {
			return
		}
		// Invalidation outlives the request that revealed it.
		ctx := context.Background()
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			inv.HandleInvalidation(ctx, session.ReasonExpired)
		case http.StatusForbidden:
			inv.HandleInvalidation(ctx, session.ReasonForbidden)
		}
	})
}

var _ session.AuthHeaderSetter = (*Facade)(nil)
