package orchestrator

import "github.com/ebl-digital/chat-orchestrator/pkg/aierrors"

// retrievalUnavailableNotice is folded into the context block (never shown
// raw) when retrieval fails after its one retry:
// the generative client still answers, but the user is clearly told
// knowledge sources are degraded.
const retrievalUnavailableNotice = "[notice: our knowledge sources are temporarily unavailable; answer from general banking knowledge only, and say so explicitly]"

func authoritativeFailureMessage() string {
	return aierrors.UserMessages[aierrors.ClassAuthoritativeError]
}

func generativeFailureMessage() string {
	return aierrors.UserMessages[aierrors.ClassGenerativeError]
}
