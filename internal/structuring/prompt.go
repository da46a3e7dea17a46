package structuring

import "fmt"

var transcriptSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"time": map[string]any{
				"type":        "string",
				"description": "Estimated timestamp of the dialogue in M:SS format, starting from 0:00 and increasing.",
			},
			"speaker": map[string]any{
				"type":        "string",
				"description": "Either 'You' for the therapist or the client's name.",
			},
			"dialogue": map[string]any{
				"type":        "string",
				"description": "The words spoken in this entry.",
			},
		},
		"required": []any{"time", "speaker", "dialogue"},
	},
}

func buildPrompt(rawText, clientName string) string {
	return fmt.Sprintf(`You process therapy session transcripts. Structure the raw transcript below into a JSON array of dialogue entries, each with "time", "speaker", and "dialogue" fields.

There are two speakers: the therapist, labelled "You", and the client, whose name is %q. The raw text may prefix turns with "T:" for the therapist and "C:" for the client; use those hints to attribute each turn.

Estimate timestamps for every entry, starting at "0:00" and increasing with the flow of the conversation.

Return only the JSON array.

Raw transcript:
---
%s
---
`, clientName, rawText)
}
