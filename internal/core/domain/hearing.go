package domain

type Hearing struct {
	ID          string `json:"id"`
	CaseID      string `json:"case_id"`
	HearingDate string `json:"hearing_date"`
	Purpose     string `json:"purpose"`
	JudgeName   string `json:"judge_name,omitempty"`
	ItemNumber  string `json:"item_number,omitempty"`
	CourtRoom   string `json:"court_room,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
}

// CauseListEntry is one listed matter parsed out of a court cause list.
type CauseListEntry struct {
	CaseNumber  string `json:"case_number"`
	HearingDate string `json:"hearing_date"`
	CourtRoom   string `json:"court_room,omitempty"`
	ItemNumber  string `json:"item_number,omitempty"`
	JudgeName   string `json:"judge_name,omitempty"`
	Petitioner  string `json:"petitioner,omitempty"`
	Respondent  string `json:"respondent,omitempty"`
}

type CauseListImport struct {
	Entries      int       `json:"entries"`
	Skipped      int       `json:"skipped"`
	CasesCreated int       `json:"cases_created"`
	Hearings     []Hearing `json:"hearings"`
}
