package translate

import (
	"strings"

	"github.com/versetool/versepane/internal/service"
)

// systemPrompt frames the task for every provider. The model must return
// only the rendered verse so the result can be placed into a cell verbatim.
const systemPrompt = "You are assisting a Bible translation team. " +
	"Render the given verse from the source text tradition into the target " +
	"text tradition, preserving meaning and verse boundaries. Reply with " +
	"the rendered verse text only, no quotation marks and no commentary."

// buildPrompt assembles the user prompt for one verse.
func buildPrompt(req service.TranslateRequest, sourceResource, targetResource string) string {
	var b strings.Builder
	b.WriteString("Source tradition: ")
	b.WriteString(orUnknown(sourceResource))
	b.WriteString("\nTarget tradition: ")
	b.WriteString(orUnknown(targetResource))
	if req.Context != "" {
		b.WriteString("\nSurrounding context:\n")
		b.WriteString(req.Context)
	}
	b.WriteString("\nVerse:\n")
	b.WriteString(req.SourceText)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unspecified"
	}
	return s
}
