// Package legaltools holds the limitation-period and court-fee calculators.
package legaltools

import (
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

type LimitationRule struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Article     string `json:"article"`
	Years       int    `json:"period_years"`
	Days        int    `json:"period_days"`
	Description string `json:"description"`
}

// LimitationRules follows the Limitation Act, 1963 and the special statutes named per rule.
var LimitationRules = []LimitationRule{
	{ID: "civil_suit_money", Label: "Civil Suit (Recovery of Money)", Article: "Article 19-25", Years: 3, Description: "For money lent, breach of contract, or accounts."},
	{ID: "appeal_hc_civil", Label: "Appeal to High Court (Civil)", Article: "Article 116(a)", Days: 90, Description: "Under Code of Civil Procedure, 1908."},
	{ID: "appeal_other_civil", Label: "Appeal to Other Court (Civil)", Article: "Article 116(b)", Days: 30, Description: "Appeal to District Judge or subordinate courts."},
	{ID: "specific_performance", Label: "Specific Performance of Contract", Article: "Article 54", Years: 3, Description: "From the date fixed for performance, or when plaintiff has notice that performance is refused."},
	{ID: "possession_immovable", Label: "Possession of Immovable Property", Article: "Article 65", Years: 12, Description: "Based on title (Adverse Possession)."},
	{ID: "execution_decree", Label: "Execution of Decree/Order", Article: "Article 136", Years: 12, Description: "Execution of any decree (other than mandatory injunction) or order of any Civil Court."},
	{ID: "review_judgment", Label: "Review of Judgment", Article: "Article 124", Days: 30, Description: "Review of judgment by a court other than the Supreme Court."},
	{ID: "revision", Label: "Revision (Civil)", Article: "Article 131", Days: 90, Description: "To the High Court for exercise of its revisional powers."},
	{ID: "consumer_complaint", Label: "Consumer Complaint", Article: "Sec 69 CPA, 2019", Years: 2, Description: "From the date on which the cause of action arises."},
	// Counted from the expiry of the 15 day notice period.
	{ID: "cheque_bounce", Label: "Cheque Bounce (Complaint)", Article: "NI Act Sec 142", Days: 30, Description: "30 Days from the expiry of the 15-day Notice Period."},
}

type LimitationResult struct {
	Rule          LimitationRule `json:"rule"`
	DeadlineDate  string         `json:"deadline_date"`
	FormattedDate string         `json:"formatted_date"`
	IsBarred      bool           `json:"is_barred"`
	DaysRemaining int            `json:"days_remaining"`
}

func FindRule(id string) (LimitationRule, bool) {
	for _, rule := range LimitationRules {
		if rule.ID == id {
			return rule, true
		}
	}
	return LimitationRule{}, false
}

// CalculateLimitation adds the rule's period to the cause-of-action date and counts whole
// days from today to the deadline.
func CalculateLimitation(causeDate, ruleID string, today time.Time) (LimitationResult, error) {
	const op = "calculate limitation"
	cause, err := time.Parse(domain.HearingDateLayout, causeDate)
	if err != nil {
		return LimitationResult{}, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("cause date %q must be YYYY-MM-DD", causeDate))
	}
	rule, ok := FindRule(ruleID)
	if !ok {
		return LimitationResult{}, domain.WrapError(domain.ErrInvalidInput, op, errors.New("unknown limitation rule "+ruleID))
	}

	deadline := addYearsClamped(cause, rule.Years).AddDate(0, 0, rule.Days)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	remaining := int(deadline.Sub(start).Hours() / 24)

	return LimitationResult{
		Rule:          rule,
		DeadlineDate:  deadline.Format(domain.HearingDateLayout),
		FormattedDate: deadline.Format("January 2, 2006"),
		IsBarred:      remaining < 0,
		DaysRemaining: remaining,
	}, nil
}

// addYearsClamped keeps the day within the target month, so 29 February plus one year is
// 28 February rather than 1 March.
func addYearsClamped(t time.Time, years int) time.Time {
	if years == 0 {
		return t
	}
	shifted := t.AddDate(years, 0, 0)
	if shifted.Day() != t.Day() {
		return time.Date(shifted.Year(), shifted.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	}
	return shifted
}
