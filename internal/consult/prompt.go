package consult

import (
	"fmt"

	"github.com/Skufu/triage/internal/llm"
)

const systemPrompt = "You are a medical assistant."

func BuildPrompt(age, symptoms string) string {
	return fmt.Sprintf("The patient is %s years old and describes the following symptoms: %s. "+
		"What is the most likely medical condition, its urgency level (Low, Moderate, High), and advice?", age, symptoms)
}

func buildMessages(age, symptoms string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: BuildPrompt(age, symptoms)},
	}
}
