// Package generate builds steps that call language models.
//
// A generative step renders a system prompt and a user template (Jinja2)
// over its resolved inputs, sends them to the chat model named by its model
// input, normalizes the response to text and, when a schema.Shape is
// declared, coerces the text into a validated record.
package generate
