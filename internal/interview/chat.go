package interview

import (
	"fmt"
	"strings"

	"github.com/jonathan/interview-assistant/internal/fields"
	"github.com/jonathan/interview-assistant/internal/types"
)

// Bot messages.
const (
	WelcomeMessage       = "Welcome! Upload your resume, then we will collect any missing details."
	AllCapturedMessage   = "All set — Name, Email, and Phone captured."
	DetailsDoneMessage   = "Great — all details obtained. You can start the interview below."
	ScoringFailedMessage = "Scoring failed. Please try again."
)

const emptyField = "—"

// ExtractedMessage describes the fields found in a résumé.
func ExtractedMessage(name, email, phone string) string {
	return fmt.Sprintf("I found — Name: %s, Email: %s, Phone: %s.", orDash(name), orDash(email), orDash(phone))
}

func orDash(v string) string {
	if v == "" {
		return emptyField
	}
	return v
}

// MissingFields returns the required fields that are empty, in collection order.
func MissingFields(p types.CandidateProfile) []string {
	var missing []string
	for _, f := range types.RequiredFields {
		if p.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (s *Session) botSay(text string) {
	s.state.Messages = append(s.state.Messages, types.ChatMessage{Role: types.RoleBot, Text: text})
}

func (s *Session) userSay(text string) {
	s.state.Messages = append(s.state.Messages, types.ChatMessage{Role: types.RoleUser, Text: text})
}

// promptMissing posts the outstanding-field summary followed by the prompt
// for the head field.
func (s *Session) promptMissing(lead string) {
	missing := s.state.MissingFields
	s.botSay(fmt.Sprintf("%s %s.", lead, strings.Join(missing, ", ")))
	s.botSay(fields.PromptFor(missing[0]))
}

// SaveProfile merges extracted fields into the profile. Extracted values only
// fill fields that are still empty. It then recomputes the missing fields and
// starts or finishes the chat loop. The returned slice is the new missing list.
func (s *Session) SaveProfile(extracted types.CandidateProfile) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range types.RequiredFields {
		if v := strings.TrimSpace(extracted.Get(f)); v != "" && s.state.Profile.Get(f) == "" {
			s.state.Profile.Set(f, v)
		}
	}
	if extracted.ResumeMeta != nil {
		meta := *extracted.ResumeMeta
		s.state.Profile.ResumeMeta = &meta
	}

	s.state.MissingFields = MissingFields(s.state.Profile)
	if len(s.state.MissingFields) > 0 {
		s.promptMissing("Saved. I still need:")
	} else {
		s.botSay(AllCapturedMessage)
	}

	s.changed()
	return append([]string(nil), s.state.MissingFields...)
}

// RecordExtraction posts the résumé extraction summary to the chat.
func (s *Session) RecordExtraction(name, email, phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.botSay(ExtractedMessage(name, email, phone))
	s.changed()
}

// SendChat handles a candidate chat message. The head of the missing list is
// validated; rejection re-prompts for the same field and leaves the profile
// unchanged. With nothing missing the message is only recorded. The returned
// bool reports whether a field was accepted.
func (s *Session) SendChat(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.changed()

	s.userSay(text)
	if len(s.state.MissingFields) == 0 {
		return false
	}

	field := s.state.MissingFields[0]
	value, ok := fields.Validate(field, text)
	if !ok {
		s.botSay(fmt.Sprintf("That doesn't look like a valid %s. %s", field, fields.PromptFor(field)))
		return false
	}

	s.state.Profile.Set(field, value)
	s.state.MissingFields = append([]string(nil), s.state.MissingFields[1:]...)
	if len(s.state.MissingFields) > 0 {
		s.promptMissing("Got it. Still need:")
	} else {
		s.botSay(DetailsDoneMessage)
	}
	return true
}
