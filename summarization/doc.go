// Package summarization condenses a transcript into a short summary.
//
// A Summarizer is a provider.RequestResponse. LLM backends are adapted with
// FromLLM; Extractive is the local fallback that always constructs.
package summarization
