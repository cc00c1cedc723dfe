package ingestion

import (
	"regexp"
	"strings"

	"github.com/jonathan/interview-assistant/internal/fields"
)

// Fields are the contact details found in résumé text. Empty strings mean
// not found.
type Fields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// nameScanLines bounds how far down the résumé the name is looked for.
const nameScanLines = 15

var (
	resumeEmailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	twoWordsPattern    = regexp.MustCompile(`[A-Za-z]{2,}\s+[A-Za-z]{2,}`)
	contactLinePrefix  = regexp.MustCompile(`(?i)^(email|phone)`)
)

// ExtractFields finds the email, phone and name in text. The name is the
// first of the leading non-empty lines that is not a contact line, has no
// '@' and contains two words of at least two letters.
func ExtractFields(text string) Fields {
	if strings.TrimSpace(text) == "" {
		return Fields{}
	}

	f := Fields{
		Email: resumeEmailPattern.FindString(text),
		Phone: fields.FindPhone(text),
	}

	lines := NonEmptyLines(text)
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}
	for _, line := range lines {
		if contactLinePrefix.MatchString(line) || strings.Contains(line, "@") {
			continue
		}
		if twoWordsPattern.MatchString(line) {
			f.Name = line
			break
		}
	}
	return f
}
