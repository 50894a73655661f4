// Package translate implements the translation collaborator on top of
// hosted model providers.
//
// Three providers are built in: Anthropic, OpenAI, and Gemini. They share
// one prompt, so switching providers changes latency and cost but not the
// task given to the model. Providers register themselves by name; the
// application picks one from configuration via New.
package translate
