package prompt

import (
	"strings"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/chatModel"
)

const (
	contextLabel     = "CONTEXT:"
	contextDelimiter = "---"
)

const instructionPreamble = `You are a classroom doubt solver. Help students by answering their questions using ONLY the study material supplied below.

RULES:
1. NO INVENTION: if the material does not contain the answer, reply with exactly this sentence: "` + chatModel.RefusalSentence + `"

2. OUTPUT FORMAT (markdown, these primitives only):
   - '### ' starts a main heading.
   - '#### ' starts a subheading.
   - **double asterisks** mark key terms and definitions in bold.
   - '- ' starts a bullet point.
   - Do not write long paragraphs. Give every distinct concept or step its own bullet.

3. REGISTER: use precise academic language suited to engineering examinations.

4. REFERENCES: when the answer draws on several parts of the material, name the sections or pages it came from if they can be identified.

5. GROUNDING: do not draw on outside knowledge. The material below is the only permitted source.
`

// DefaultSampling is applied to every request; there is no per-request override.
var DefaultSampling = chatModel.SamplingParams{
	Temperature: config.ModelTemperature,
	TopP:        config.ModelTopP,
	TopK:        config.ModelTopK,
}

// RenderInstruction embeds the whole document, untruncated, into the fixed instruction
// template. It panics on empty text: callers must not compose without a loaded document.
func RenderInstruction(documentText string) string {
	if documentText == "" {
		panic("prompt: instruction rendered without document text")
	}

	var b strings.Builder
	b.Grow(len(instructionPreamble) + len(documentText) + 32)
	b.WriteString(instructionPreamble)
	b.WriteString("\n")
	b.WriteString(contextLabel)
	b.WriteString("\n")
	b.WriteString(contextDelimiter)
	b.WriteString("\n")
	b.WriteString(documentText)
	b.WriteString("\n")
	b.WriteString(contextDelimiter)
	b.WriteString("\n")
	return b.String()
}

func Compose(documentText string, history []chatModel.HistoryEntry, question string) chatModel.GenerationRequest {
	turns := make([]chatModel.Turn, 0, len(history)+1)
	for _, h := range history {
		turns = append(turns, chatModel.Turn{Role: turnRole(h.Role), Text: h.Content})
	}
	turns = append(turns, chatModel.Turn{Role: chatModel.TurnUser, Text: question})

	return chatModel.GenerationRequest{
		InstructionBlock: RenderInstruction(documentText),
		Turns:            turns,
		Sampling:         DefaultSampling,
	}
}

func turnRole(r chatModel.Role) chatModel.TurnRole {
	if r == chatModel.RoleUser {
		return chatModel.TurnUser
	}
	return chatModel.TurnModel
}
