package store

import "mindscribe/internal/records"

// Seed returns the demo practice: two clients and one session each.
func Seed() ([]records.Client, []records.Session) {
	clients := []records.Client{
		{
			ID:         "1",
			FirstName:  "Rhonda",
			LastName:   "Garcia Sanchez",
			Email:      "rhonda.sanchez@example.com",
			Pronouns:   "She/Her",
			Modalities: []string{"Logotherapy", "Multicultural Therapy"},
			Type:       records.ClientIndividual,
		},
		{
			ID:         "2",
			FirstName:  "Tony",
			LastName:   "Pasano",
			Email:      "tony.p@example.com",
			Pronouns:   "He/Him",
			Modalities: []string{"MI: Motivational Interviewing"},
			Type:       records.ClientIndividual,
		},
	}
	sessions := []records.Session{
		{
			ID:          "101",
			ClientID:    "1",
			Date:        "Apr 29, 2023",
			Time:        "7:00 PM",
			Type:        "Intake session",
			Title:       "History of violence - intake note demo",
			Description: "The client has concerns about their daughter's behavioral issues, including bullying and aggression towards other children at school.",
			Transcript:  intakeDemoTranscript(),
			PrivateNote: "Client seems hesitant to open up but is willing to engage in the process.",
		},
		{
			ID:          "102",
			ClientID:    "2",
			Date:        "Jul 29, 2022",
			Time:        "9:33 PM",
			Duration:    28,
			Type:        "Progress note demo",
			Title:       "Surgeon's perfectionism trauma - progress note demo",
			Description: "The client experienced trauma related to the death of their patient and father at a young age.",
			Transcript:  []records.TranscriptEntry{},
		},
	}
	return clients, sessions
}

func intakeDemoTranscript() []records.TranscriptEntry {
	const you, rhonda = records.PractitionerLabel, "Rhonda"
	return []records.TranscriptEntry{
		{Time: "0:00:14", Speaker: you, Dialogue: "Hi, Rhonda. How you doing today?"},
		{Time: "0:00:15", Speaker: rhonda, Dialogue: "I'm fine."},
		{Time: "0:00:16", Speaker: you, Dialogue: "You're fine?"},
		{Time: "0:00:17", Speaker: rhonda, Dialogue: "Yeah."},
		{Time: "0:00:18", Speaker: you, Dialogue: "I'm glad you could come in today for this intake. Want to explain a little about the process? I understand you've already completed the informed consent."},
		{Time: "0:00:28", Speaker: rhonda, Dialogue: "Yeah, I've done it before."},
		{Time: "0:00:30", Speaker: you, Dialogue: "So you've done this before?"},
		{Time: "0:00:31", Speaker: rhonda, Dialogue: "Yeah."},
		{Time: "0:00:32", Speaker: you, Dialogue: "So understand my obligations to report certain things. Okay, okay, so you answered some other questions in that packet you filled out with the informed consent, factual type questions. Information might be on your driver's license or insurance cards, things like that. I'm going to be asking you more emotionally oriented questions as part of this part of the intake."},
		{Time: "0:01:00", Speaker: rhonda, Dialogue: "Okay."},
		{Time: "0:01:02", Speaker: you, Dialogue: "Some of the topics we'll be covering are sensitive for many people, and you may not want to talk about it. That's okay."},
		{Time: "0:01:10", Speaker: rhonda, Dialogue: "All right."},
	}
}
