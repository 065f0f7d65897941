package extract

import (
	"strings"

	"github.com/use-agent/finspider/models"
)

// buildInstruction assembles the single-message instruction sent to the
// text-understanding service. It is fully determined by the descriptor
// and the reduced content, so identical snapshots produce identical
// requests.
func buildInstruction(desc models.SchemaDescriptor, content string) string {
	var b strings.Builder
	b.WriteString("You are given content captured from a web page.\n")
	b.WriteString("Section: ")
	b.WriteString(desc.Hint)
	b.WriteString("\n\n")

	switch desc.Shape {
	case models.ShapeTable:
		b.WriteString(`Respond with a single JSON object of the form {"rows": [...]}.` + "\n")
		b.WriteString("Each element of \"rows\" must be an object with exactly these keys: ")
		b.WriteString(strings.Join(desc.Fields, ", "))
		b.WriteString(".\nUse an empty string for values the content does not show. ")
		b.WriteString("Do not add keys, omit keys, or include commentary.\n")
	case models.ShapeObject:
		b.WriteString("Respond with a single JSON object mapping each name to its displayed value, ")
		b.WriteString("in the order they appear. All values must be strings. ")
		b.WriteString("Do not nest objects or include commentary.\n")
	case models.ShapeList:
		b.WriteString(`Respond with a single JSON object of the form {"values": ["..."]}` + "\n")
		b.WriteString("where \"values\" lists every item as a string, in page order. ")
		b.WriteString("No other keys, no commentary.\n")
	case models.ShapeText:
		b.WriteString("Respond with the requested text verbatim. ")
		b.WriteString("No markdown, no quotation marks, no commentary.\n")
	}

	b.WriteString("\nContent:\n\n")
	b.WriteString(content)
	return b.String()
}
