package approval

import (
	"context"
	"time"

	"github.com/gatekit/gatekit/model/fault"
	"github.com/gatekit/gatekit/model/proposal"
)

// AttestFunc decides how one approver responds to a pending proposal.
// Return ok=false to leave the proposal untouched.
type AttestFunc func(p *proposal.Proposal) (decision proposal.Decision, attested proposal.Digest, ok bool)

// AutoAttester starts a goroutine that polls ListPending and applies fn on
// behalf of approver. It returns stop() – call it (or cancel ctx) to exit.
func AutoAttester(ctx context.Context, svc Service, approver string, fn AttestFunc, interval time.Duration) (stop func()) {
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
				for _, p := range pending {
					if p.HasAttested(approver) {
						continue
					}
					decision, attested, ok := fn(p)
					if !ok {
						continue
					}
					if _, err := svc.Attest(ctx, p.ID, approver, decision, attested); err != nil {
						// Another poller may have raced us past pending.
						if fault.HasCode(err, fault.CodeProposalNotPending) {
							continue
						}
					}
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoPass attests PASS over the current digest of every pending proposal.
func AutoPass(ctx context.Context, svc Service, approver string, interval time.Duration) func() {
	return AutoAttester(ctx, svc, approver, func(p *proposal.Proposal) (proposal.Decision, proposal.Digest, bool) {
		return proposal.DecisionPass, p.PayloadDigest, true
	}, interval)
}

// AutoFail attests FAIL over the current digest of every pending proposal.
func AutoFail(ctx context.Context, svc Service, approver string, interval time.Duration) func() {
	return AutoAttester(ctx, svc, approver, func(p *proposal.Proposal) (proposal.Decision, proposal.Digest, bool) {
		return proposal.DecisionFail, p.PayloadDigest, true
	}, interval)
}
