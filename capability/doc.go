// Package capability resolves a working backend for each capability kind
// (transcription, summarization, quiz, translation) from an ordered list of
// candidates.
//
// A candidate is constructed and then smoke tested. The first candidate to
// pass both is bound and cached until an explicit reset. When every
// candidate fails the slot binds an unavailable marker instead of returning
// an error, so callers turn it into a failed stage rather than a crash.
//
//	slot := capability.NewSlot(capability.KindQuiz, []capability.Candidate[quiz.Generator]{
//	    {ID: "gemini-1.5-flash", Construct: newFlash, Smoke: quiz.Smoke},
//	    {ID: "ollama", Construct: newOllama},
//	})
//	reg.Register(slot)
//	binding := slot.Resolve(ctx)
package capability
