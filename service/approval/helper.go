package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/toolgate/internal/clock"
)

// DecisionFunc decides what to do with a pending approval.
// Return (true,  "") to approve
//
//	(false, "…") to deny with reason.
type DecisionFunc func(a *Approval) (approved bool, reason string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every approval. It returns stop() - call it (or cancel ctx) to exit.
func AutoDecider(ctx context.Context,
	svc Service,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				pending, _ := svc.ListPending(ctx)
				for _, a := range pending {
					ok, reason := fn(a)
					_, _ = svc.Decide(ctx, a.ID, ok, "auto", reason)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending approvals.
func AutoApprove(ctx context.Context,
	svc Service,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Approval) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically denies all pending approvals with the given reason.
func AutoReject(ctx context.Context,
	svc Service,
	reason string,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Approval) (bool, string) { return false, reason }, interval)
}

// AutoExpire denies pending approvals whose deadline has passed. Approvals
// without an expiresAt are left for a human reviewer.
func AutoExpire(ctx context.Context, svc Service, interval time.Duration) func() {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				pending, _ := svc.ListPending(ctx)
				for _, a := range pending {
					if !a.Expired(clock.Now()) {
						continue
					}
					_, _ = svc.Decide(ctx, a.ID, false, "auto", "approval expired")
				}
			}
		}
	}()
	return func() { close(done) }
}

// WaitForDecision polls until the approval is resolved or the context ends.
func WaitForDecision(ctx context.Context, svc Service, id string, interval time.Duration) (*Approval, error) {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		a, err := svc.Approval(ctx, id)
		if err != nil {
			return nil, err
		}
		if a.Status.IsResolved() {
			return a, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for approval %v: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}
