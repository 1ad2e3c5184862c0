// Package brain implements the intent classifier and response formatter
// behind the orchestrator.
//
// Brain talks to an OpenAI-compatible chat-completions endpoint. Both of
// its roles are best effort: a classification failure is returned as an
// error so the orchestrator can apply its default routing, and a formatting
// failure likewise falls back to presenting the raw result. For
// deployments without an LLM endpoint (and for tests) the package provides
// RuleClassifier, a deterministic keyword router over the same agent kinds,
// and RawFormatter, which renders results as indented JSON.
package brain
