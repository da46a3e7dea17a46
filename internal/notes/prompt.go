package notes

import "fmt"

var intakeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"identificationInformation": map[string]any{
			"type":        "string",
			"description": "Client's name, age, and any other identifying details mentioned.",
		},
		"familySituation": map[string]any{
			"type":        "string",
			"description": "The client's family, relationships, and living situation.",
		},
		"socioDemographicInformation": map[string]any{
			"type":        "string",
			"description": "The client's work, education, and social background.",
		},
		"reasonForSeekingTherapy": map[string]any{
			"type":        "string",
			"description": "The main issues and goals the client expressed for therapy.",
		},
	},
	"required": []any{"identificationInformation", "reasonForSeekingTherapy"},
}

func intakePrompt(transcript, clientName string) string {
	return fmt.Sprintf(`You are a professional therapist's assistant. Using the session transcript below, write a structured intake note as a JSON object. The client's name is %s. Cover identification information, family situation, socio-demographic information, and the reason for seeking therapy.

Transcript:
%s`, clientName, transcript)
}

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`Summarize the key points and feelings the client expressed in this therapy session transcript. Write for the client so it is easy to understand and reflect on, using empathetic and encouraging language. Address the client directly in the second person ("You mentioned...", "It sounds like...").

Transcript:
%s`, transcript)
}
