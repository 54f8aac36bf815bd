package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ebl-digital/chat-orchestrator/pkg/answer"
	"github.com/ebl-digital/chat-orchestrator/pkg/directory"
	"github.com/ebl-digital/chat-orchestrator/pkg/retrieval"
)

type feeResult struct {
	Answer answer.RenderedAnswer
	Prompt *answer.Prompt
}

type locationResult struct {
	Answer answer.RenderedAnswer
}

type directoryResult struct {
	Employees []directory.Employee
}

type retrievalResult struct {
	Result retrieval.Result
}

// withDeadline bounds a single downstream call to the orchestrator's
// configured per-call timeout.
func (o *Orchestrator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.cfg.PerCallTimeout)
}

// dispatchFee runs the Fee Client leg of authoritative dispatch: at most
// one retry on an AuthoritativeError, then a scripted apology instead of a
// retrieval fallback.
func (o *Orchestrator) dispatchFee(ctx context.Context, utterance string) (answer.RenderedAnswer, *answer.Prompt) {
	res, err := withRetry(o.cfg.RetryCount, func() (feeResult, error) {
		return o.feeBreaker.Execute(func() (feeResult, error) {
			callCtx, cancel := o.withDeadline(ctx)
			defer cancel()
			ans, prompt, err := o.fee.Query(callCtx, utterance)
			return feeResult{Answer: ans, Prompt: prompt}, err
		})
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("fee client failed after retry")
		return answer.Authoritative(authoritativeFailureMessage()), nil
	}
	return res.Answer, res.Prompt
}

// dispatchFeeSelection re-issues a fee query after a disambiguation
// selection.
func (o *Orchestrator) dispatchFeeSelection(ctx context.Context, promptContext, params map[string]string) (answer.RenderedAnswer, *answer.Prompt) {
	res, err := withRetry(o.cfg.RetryCount, func() (feeResult, error) {
		return o.feeBreaker.Execute(func() (feeResult, error) {
			callCtx, cancel := o.withDeadline(ctx)
			defer cancel()
			ans, prompt, err := o.fee.ResolveSelection(callCtx, promptContext, params)
			return feeResult{Answer: ans, Prompt: prompt}, err
		})
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("fee selection resolve failed after retry")
		return answer.Authoritative(authoritativeFailureMessage()), nil
	}
	return res.Answer, res.Prompt
}

// dispatchLocation runs the Location Client leg. The
// client itself renders a scripted failure message on error, so the
// orchestrator only needs to decide whether to retry.
func (o *Orchestrator) dispatchLocation(ctx context.Context, utterance string) answer.RenderedAnswer {
	res, err := withRetry(o.cfg.RetryCount, func() (locationResult, error) {
		return o.locationBreaker.Execute(func() (locationResult, error) {
			callCtx, cancel := o.withDeadline(ctx)
			defer cancel()
			ans, err := o.location.Query(callCtx, utterance)
			return locationResult{Answer: ans}, err
		})
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("location client failed after retry")
		return answer.Authoritative(authoritativeFailureMessage())
	}
	return res.Answer
}

// dispatchDirectory runs the directory leg. A directory turn never falls
// through to retrieval, and a store error is user-visible rather than
// silent.
func (o *Orchestrator) dispatchDirectory(ctx context.Context, term string) answer.RenderedAnswer {
	if term == "" {
		return directory.RenderNotFound()
	}
	res, err := withRetry(o.cfg.RetryCount, func() (directoryResult, error) {
		return o.directoryBreaker.Execute(func() (directoryResult, error) {
			callCtx, cancel := o.withDeadline(ctx)
			defer cancel()
			employees, err := o.directory.Search(callCtx, term, directory.DefaultLimit)
			return directoryResult{Employees: employees}, err
		})
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("directory store failed after retry")
		return directory.RenderUnavailable()
	}
	if len(res.Employees) == 0 {
		return directory.RenderNotFound()
	}
	return directory.Render(res.Employees)
}

// dispatchRetrieval runs the retrieval leg. After one retry, the caller
// falls back to an empty, clearly-labeled context rather than failing the
// whole turn.
func (o *Orchestrator) dispatchRetrieval(ctx context.Context, utterance, knowledgeBase string) (retrieval.Result, error) {
	res, err := withRetry(o.cfg.RetryCount, func() (retrievalResult, error) {
		return o.retrievalBreaker.Execute(func() (retrievalResult, error) {
			callCtx, cancel := o.withDeadline(ctx)
			defer cancel()
			result, err := o.retrieval.Retrieve(callCtx, utterance, knowledgeBase)
			return retrievalResult{Result: result}, err
		})
	})
	return res.Result, err
}
