// Package quiz turns a summary into five multiple choice questions.
//
// The preferred backends are Gemini model variants tried in order
// (GeminiModels); any other llm.Provider can serve through FromLLM.
package quiz
