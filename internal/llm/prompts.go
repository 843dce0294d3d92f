package llm

import (
	"fmt"
	"strings"
)

const systemJSON = "You are a legal document analysis engine. Respond with JSON only. No markdown. Never omit keys."

const systemChat = "You are a helpful legal assistant. Answer questions about the analyzed document in plain language. Remind the user you are not a lawyer when giving anything resembling advice."

// BuildTaskInput assembles the prompt for one analysis task over the document text.
func BuildTaskInput(task, userRole, language, documentText string) GenerateInput {
	var b strings.Builder
	switch task {
	case TaskRisk:
		b.WriteString("Assess the overall risk of this document for the ")
		b.WriteString(userRole)
		b.WriteString(`. Return {"level":"low|medium|high","score":0-100,"summary":"...","factors":["..."]}.`)
	case TaskKeyFigures:
		b.WriteString(`Extract key figures (dates, amounts, durations, parties). Return {"figures":[{"label":"...","value":"...","context":"..."}]}.`)
	case TaskClauses:
		b.WriteString("Explain each clause below in plain language for the ")
		b.WriteString(userRole)
		b.WriteString(`. Keep clause order. Return {"clauses":[{"index":0,"original":"...","plain":"...","riskNote":"..."}]}.`)
	case TaskFAQ:
		b.WriteString(`Write frequently asked questions a layperson would have about this document. Return {"faqs":[{"question":"...","answer":"..."}]}.`)
	case TaskMissingClauses:
		b.WriteString("List standard protective clauses missing from this document from the perspective of the ")
		b.WriteString(userRole)
		b.WriteString(`. Return {"missing":[{"name":"...","reason":"...","severity":"low|medium|high"}]}.`)
	case TaskDocType:
		b.WriteString(`Classify the document type. Return {"docType":"...","confidence":0.0-1.0}.`)
	default:
		b.WriteString("Analyze the document.")
	}
	if language != "" && language != "en" {
		fmt.Fprintf(&b, " Answer in language %q.", language)
	}
	b.WriteString("\n\nDOCUMENT:\n")
	b.WriteString(documentText)

	return GenerateInput{
		Task:     task,
		System:   systemJSON,
		Prompt:   b.String(),
		WantJSON: true,
	}
}

// BuildChatInput assembles the prompt for one conversational turn from the
// prompt-ready context bundle and the user's question.
func BuildChatInput(contextBundle, question string) GenerateInput {
	var b strings.Builder
	b.WriteString(contextBundle)
	b.WriteString("\n\nUSER QUESTION:\n")
	b.WriteString(question)
	return GenerateInput{
		Task:   TaskChat,
		System: systemChat,
		Prompt: b.String(),
	}
}
