package models

// MoodLog is a row in the Supabase mood_logs table.
type MoodLog struct {
	UserID string `json:"user_id,omitempty"`
	Mood   string `json:"mood"`
	Note   string `json:"note"`
}

// MoodOptions are the check-in labels offered by the client, best first.
var MoodOptions = []MoodOption{
	{Label: "Great", Emoji: "😊"},
	{Label: "Good", Emoji: "🙂"},
	{Label: "Okay", Emoji: "😐"},
	{Label: "Low", Emoji: "😔"},
	{Label: "Difficult", Emoji: "😰"},
}

type MoodOption struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}
