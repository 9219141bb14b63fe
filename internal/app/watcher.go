package app

import (
	"fmt"
	"time"

	"quiz-attempt/internal/domain"
)

// onLifecycle is the single handler subscribed while the attempt is active.
func (a *Attempt) onLifecycle(ev domain.LifecycleEvent) domain.Directive {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domain.StateActive {
		return domain.Directive{}
	}

	switch ev {
	case domain.EventContextMenu, domain.EventCopy:
		return domain.Directive{PreventDefault: true}
	case domain.EventHidden, domain.EventBlur:
		a.registerViolationLocked(ev)
		return domain.Directive{}
	case domain.EventBeforeUnload:
		a.registerViolationLocked(ev)
		return domain.Directive{PreventDefault: true, ConfirmLeave: true}
	default:
		return domain.Directive{}
	}
}

func (a *Attempt) registerViolationLocked(ev domain.LifecycleEvent) {
	if a.forced != nil {
		// Forced submit already pending.
		return
	}
	a.violations++
	threshold := a.cfg.ViolationThreshold
	a.log.Info("violation", "event", ev, "count", a.violations, "threshold", threshold)
	a.presenter.ShowWarning(fmt.Sprintf("Warning %d/%d: Do not leave the exam screen", a.violations, threshold))

	if a.violations < threshold {
		return
	}
	a.presenter.ShowWarning("Too many violations. Submitting quiz.")
	a.forced = time.AfterFunc(a.cfg.ForcedSubmitDelay, a.forceSubmit)
}

func (a *Attempt) forceSubmit() {
	a.mu.Lock()
	submission, gen, err := a.beginSubmitLocked(domain.TriggerViolation)
	ctx := a.runCtx
	a.mu.Unlock()
	if err != nil {
		return
	}
	_ = a.finishSubmit(ctx, submission, gen)
}
