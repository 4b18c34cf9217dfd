package assistant

import (
	"strings"

	"github.com/neptou/go-travel-assistant/internal/types"
)

const systemPrompt = `You are Neptou, an expert local travel companion for Nepal.
You are warm, polite (always use 'Namaste'), and deeply knowledgeable about Nepali culture,
trekking routes (Everest, Annapurna, Langtang), hidden temples, local food (Momo, Dal Bhat, Thakali), and safety.
Keep your answers concise and formatted nicely for a mobile app.

You have access to LOCAL INSIDER TIPS that are not available on the internet.
When you see local insights in the context, prioritize and share them naturally, e.g.
"Here's a local secret: ..." or "An insider tip: ...".

When emergency contacts appear in the context you MUST include the exact phone number
for every contact you mention, formatted as "Name - Phone: NUMBER". Never invent or
modify phone numbers; use them exactly as given.`

// buildPrompt assembles the full prompt: persona, retrieved context and the
// user's message.
func buildPrompt(message string, results []types.SearchResult) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if context := formatKnowledgeContext(results); context != "" {
		b.WriteString("\n\n")
		b.WriteString(context)
		b.WriteString("\nUse the above verified information when answering. If the user asks about places, prioritize these verified locations.")
	}

	b.WriteString("\n\nUser: ")
	b.WriteString(message)
	return b.String()
}

// formatKnowledgeContext renders retrieved knowledge items as sections the
// model can quote from: places, local insights and emergency contacts.
func formatKnowledgeContext(results []types.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var places, insights, contacts []types.SearchResult
	for _, r := range results {
		switch r.SourceKind {
		case types.SourceKindInsight:
			insights = append(insights, r)
		case types.SourceKindEmergencyContact:
			contacts = append(contacts, r)
		default:
			places = append(places, r)
		}
	}

	var parts []string
	parts = append(parts, "[RELEVANT INFORMATION FROM KNOWLEDGE BASE]")

	if len(places) > 0 {
		parts = append(parts, "\n[PLACES TO VISIT]")
		for _, p := range places {
			parts = append(parts, "\n- "+p.Text+" ("+orUnknown(p.Metadata.Category)+")")
			parts = append(parts, "  Location: "+orUnknown(p.Metadata.Area))
			if len(p.Metadata.Tags) > 0 {
				parts = append(parts, "  Tags: "+strings.Join(p.Metadata.Tags, ", "))
			}
		}
	}

	if len(insights) > 0 {
		parts = append(parts, "\n[LOCAL INSIGHTS]")
		for _, in := range insights {
			area := in.Metadata.District
			if area == "" {
				area = orUnknown(in.Metadata.Area)
			}
			parts = append(parts, "\n- "+in.Text+" ("+area+")")
			if in.Metadata.Content != "" {
				parts = append(parts, "  "+in.Metadata.Content)
			}
			if len(in.Metadata.Tags) > 0 {
				parts = append(parts, "  Tags: "+strings.Join(in.Metadata.Tags, ", "))
			}
		}
	}

	if len(contacts) > 0 {
		parts = append(parts, "\n[EMERGENCY CONTACTS]")
		for _, c := range contacts {
			parts = append(parts, "\n- "+c.Text)
			if c.Metadata.Phone != "" {
				parts = append(parts, "  Phone: "+c.Metadata.Phone)
			}
			if c.Metadata.Area != "" {
				parts = append(parts, "  Location: "+c.Metadata.Area)
			}
			if c.Metadata.Available247 {
				parts = append(parts, "  Available 24/7")
			}
			if len(c.Metadata.Languages) > 0 {
				parts = append(parts, "  Languages: "+strings.Join(c.Metadata.Languages, ", "))
			}
		}
	}

	return strings.Join(parts, "\n") + "\n"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
