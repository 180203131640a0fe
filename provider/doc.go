// Package provider defines the request/response shape shared by every
// backend the pipeline talks to: LLM SDKs, the transcription sidecar and
// local subprocess tools.
//
// A backend implements RequestResponse[I, O]. Adapt maps a backend onto a
// domain handle, and Middleware layers cross-cutting behavior on top:
//
//	summarizer := provider.Adapt(chat, "gemini-summarizer", toPrompt, fromReply)
//	summarizer = provider.Observe(summarizer, log, metrics)
//
// Registry maps backend names to factories so configuration can choose a
// backend by name.
package provider
