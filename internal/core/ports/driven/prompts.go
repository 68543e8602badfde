package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswer builds the answer prompt. The template expects two %s
	// placeholders: the retrieved context, then the conversation context.
	PromptAnswer = "answer"
)

// DefaultAnswerPrompt is the built-in answer template.
const DefaultAnswerPrompt = `You answer questions about documents the user uploaded, using only the content below.

Content:
%s

Guidelines:
1. Answer only from the content above. Do not use outside knowledge.
2. If the question is a follow-up, use the previous exchange to work out what it refers to.
3. Do not comment on the quality, formatting or completeness of the source material.
4. If the content does not contain the answer, say so plainly.
5. Be concise and specific. Mention slide or page numbers when they are obvious.

%s

Answer:`

// TemplateVerbs counts the %s verbs in a prompt template. ok is false
// when the template holds any other formatting verb; %% is a literal
// percent sign.
func TemplateVerbs(template string) (n int, ok bool) {
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 == len(template) {
			return n, false
		}
		i++
		switch template[i] {
		case '%':
		case 's':
			n++
		default:
			return n, false
		}
	}
	return n, true
}

// TokenCounter measures and truncates text in model tokens.
type TokenCounter interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Truncate returns the longest prefix of text with at most n tokens.
	Truncate(text string, n int) string
}
