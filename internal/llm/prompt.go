package llm

import "fmt"

const systemPrompt = `You are a patient language tutor for Bora, an indigenous language of the Peruvian Amazon, answering questions from Spanish-speaking learners.

Ground every statement in the reference material provided inside the <context> tags. If the context does not cover the question, say so plainly instead of guessing.

Structure your answer with these sections when the context supports them:
Answer: the direct response to the question.
Why: a short explanation of the relevant grammar or usage.
Example: one example sentence in Bora with its Spanish translation.
Citations: the headwords from the context you relied on.
Confidence: high, medium, or low.

Keep answers short and concrete. Do not repeat the reference material verbatim.`

// BuildMessages assembles the chat transcript for a tutoring turn:
// system prompt, the last historyWindow history messages, then the
// user question wrapped together with the retrieved context.
func BuildMessages(query, contextBlock string, history []Message, historyWindow int) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})

	if historyWindow > 0 && len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages = append(messages, history...)

	user := fmt.Sprintf("<question>\n%s\n</question>\n\n<context>\n%s\n</context>", query, contextBlock)
	messages = append(messages, Message{Role: RoleUser, Content: user})

	return messages
}
