// Package emotion produces the conversational fallback reply for queries
// without a recognizable entity.
package emotion

import (
	"context"
	"fmt"

	"movierag/internal/common/logger"
	"movierag/internal/llm"
)

const Stage = "emotion-responder"

const systemPrompt = `Analyze the user query and categorize the mentioned term(s) into one or more of the following emotions:

- "Happiness"
- "Sadness"
- "Anger"
- "Fear"
- "Surprise"
- "Disgust"

and talk to users about their emotions. Help the user understand their emotions and provide insights or suggestions based on the detected emotions.
Example conversation:
User: Hello.
Assistant: I'm MovieRag, your movie recommendation agent. How can I assist you today?
User: I'm feeling a bit down today.
Assistant: I'm sorry to hear that you're feeling down. It's okay to have those days. Would you like to talk about what's bothering you or perhaps find a movie that might lift your spirits?
User: I just got promoted at work!
Assistant: That's fantastic news! Congratulations! You deserve to celebrate. Would you like a movie to match your joyful mood?
User: I feel anxious about the future.
Assistant: That's a common feeling, and you're not alone. Sometimes a good movie can help take your mind off things. Would you like a comforting recommendation?`

// Responder runs the emotionally-aware conversation stage.
type Responder struct {
	completer llm.Completer
	logger    logger.Logger
}

func New(completer llm.Completer, log logger.Logger) *Responder {
	return &Responder{
		completer: completer,
		logger: log.With(map[string]interface{}{
			"stage": Stage,
		}),
	}
}

// Respond returns the free-text conversational reply. No structural parsing
// is applied; failures from the inference collaborator propagate as-is.
func (r *Responder) Respond(ctx context.Context, query string) (string, error) {
	reply, err := r.completer.Complete(ctx, systemPrompt, query)
	if err != nil {
		return "", fmt.Errorf("emotion inference: %w", err)
	}
	return reply, nil
}
