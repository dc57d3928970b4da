// Package analysis builds classification prompts and parses the model's
// structured replies for customer service call recordings.
package analysis

import (
	"fmt"

	"github.com/venture-data/Call-Analysis-Demo/internal/service/llm"
)

// analysisPromptTemplate instructs the model to classify a plumbing-services
// call and reply with a fixed-shape JSON document. The transcript is
// substituted verbatim between the triple backticks.
const analysisPromptTemplate = `Given the transcript of a customer service call between a representative and a caller regarding plumbing services, determine whether the call outcome is Booked, Unbooked, Not a Lead, or Excused.

Definitions:
- 'Booked': An appointment or job was successfully booked or an agent was sent to the customer.
- 'Unbooked': An appointment or job was not finalized nor an agent sent to the customer. The caller may need further follow-up or consideration before committing to scheduling a service call or receiving a quote.
- 'Not a Lead': The call primarily involves an existing customer seeking assistance or information related to services already provided, resolving issues, or making personal inquiries, rather than representing a potential lead for new business.
- 'Excused': The issue was resolved during the call, no appointment was necessary, and no agent was sent to the customer.

Transcript:
[The transcript of the call is provided within triple backticks.]

` + "```%s```" + `

Steps to follow:
1. Analyze the transcript and determine the call category, but do not give output yet.
2. Decide on exactly one of "Booked", "Unbooked", "Not a Lead" or "Excused", without any additional text.
3. Only provide output as a JSON object where the first key is "Class" and the value is the chosen category.
The second key is "Explanation" and the value is the reasoning for the decision in one sentence.
The third key is "Summary" and the value is a summary of the call in 5 lines.
The last key is "Entities", a JSON object with the keys 1. Customer Name, 2. address, 3. Services Requested, 4. Reason of call.`

// questionSystemInstruction restricts follow-up answers to transcript content.
const questionSystemInstruction = "You answer questions about a customer service call. Use only information contained in the call transcript provided by the user. If the transcript does not contain the answer, say that the transcript does not mention it."

// BuildAnalysisPrompt renders the fixed classification prompt with the
// transcript embedded verbatim. An empty transcript still yields a
// syntactically valid prompt.
func BuildAnalysisPrompt(transcript string) string {
	return fmt.Sprintf(analysisPromptTemplate, transcript)
}

// BuildQuestionMessages produces the 3-message sequence for a stateless
// follow-up question: the grounding instruction, the transcript, and the
// question itself.
func BuildQuestionMessages(transcript, question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: questionSystemInstruction},
		{Role: llm.RoleUser, Content: "Transcript of the call:\n```\n" + transcript + "\n```"},
		{Role: llm.RoleUser, Content: question},
	}
}
