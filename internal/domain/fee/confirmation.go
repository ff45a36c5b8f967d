package fee

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
)

// CaseDetailsURL links to the case in the caseworker UI. Separators in the
// reference are dropped so only the 16 digits remain.
func CaseDetailsURL(baseURL, caseReference string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, caseReference)
	return strings.TrimRight(baseURL, "/") + "/cases/case-details/" + digits
}

// ConfirmationBody is the markdown shown after a fee is paid.
func ConfirmationBody(fee generalapp.Fee, caseReference, baseURL string) string {
	var sb strings.Builder
	sb.WriteString("### What happens next\n\n")
	fmt.Fprintf(&sb, "The general application fee of %s has been paid.\n\n", fee.FormatPounds())
	sb.WriteString("Your application will be issued and the other parties notified where required.\n\n")
	fmt.Fprintf(&sb, "[View the application](%s)\n", CaseDetailsURL(baseURL, caseReference))
	return sb.String()
}

//Personal.AI order the ending
