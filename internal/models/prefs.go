package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field names a card attribute that can be shown on a flashcard side.
type Field string

// Card fields selectable for the front and back of a flashcard.
const (
	FieldContent    Field = "content"
	FieldMeaning    Field = "meaning"
	FieldExample    Field = "example"
	FieldAIQuestion Field = "aiQuestion"
)

// Reminder methods. ReminderNone switches due-card reminders off; the
// concrete delivery channels are placeholders reserved for mobile clients,
// which all map to SSE review.due events on the server.
const (
	ReminderNone  = "none"
	ReminderPush  = "push"
	ReminderSMS   = "sms"
	ReminderEmail = "email"
)

// Prefs is the user-editable review configuration. Unlike the process
// config it is persisted alongside the deck and mutated only through an
// explicit save.
type Prefs struct {
	// ReviewDurationTrigger is the dwell time in seconds after which a
	// displayed card counts as reviewed.
	ReviewDurationTrigger int     `json:"review_duration_trigger"`
	FrontFields           []Field `json:"front_fields"`
	BackFields            []Field `json:"back_fields"`
	ReminderMethod        string  `json:"reminder_method"`
}

// DefaultPrefs returns the out-of-the-box review configuration.
func DefaultPrefs() Prefs {
	return Prefs{
		ReviewDurationTrigger: 10,
		FrontFields:           []Field{FieldAIQuestion},
		BackFields:            []Field{FieldContent, FieldMeaning, FieldExample},
		ReminderMethod:        ReminderNone,
	}
}

// Validate validates the preferences.
func (p Prefs) Validate() error {
	fieldRule := validation.Each(validation.In(
		FieldContent, FieldMeaning, FieldExample, FieldAIQuestion,
	))
	return validation.ValidateStruct(&p,
		validation.Field(&p.ReviewDurationTrigger, validation.Required, validation.Min(1), validation.Max(60)),
		validation.Field(&p.FrontFields, fieldRule),
		validation.Field(&p.BackFields, fieldRule),
		validation.Field(&p.ReminderMethod, validation.Required,
			validation.In(ReminderNone, ReminderPush, ReminderSMS, ReminderEmail)),
	)
}

// WantsAIQuestion reports whether the active field configuration shows
// the AI-generated question on either card side.
func (p Prefs) WantsAIQuestion() bool {
	for _, f := range p.FrontFields {
		if f == FieldAIQuestion {
			return true
		}
	}
	for _, f := range p.BackFields {
		if f == FieldAIQuestion {
			return true
		}
	}
	return false
}
