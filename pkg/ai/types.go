package ai

import "context"

// Generator describes an external language model capable of producing a
// grounded answer from a prompt. Implementations are synchronous and
// single-shot; streaming is not required by the chatbot core.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
