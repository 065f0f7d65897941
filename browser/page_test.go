package browser

import (
	"context"
	"testing"
	"time"
)

// A multi ticker run calls DismissCookieBanner once per entity against
// the same session. After the first sweep the call must return without
// touching the page at all; the zero page here would panic otherwise.
func TestDismissCookieBannerRunsOncePerSession(t *testing.T) {
	d := &Driver{cookieHandled: true}

	done := make(chan struct{})
	go func() {
		d.DismissCookieBanner(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DismissCookieBanner blocked on an already handled session")
	}
}
