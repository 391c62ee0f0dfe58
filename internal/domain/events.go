package domain

// DuplicateFundDetected is raised after a fund is created and at least one
// sibling fund of the same manager shares a name or alias with it.
type DuplicateFundDetected struct {
	FundID          uint   `json:"fund_id" msgpack:"fund_id"`
	DuplicateFundID uint   `json:"duplicate_fund_id" msgpack:"duplicate_fund_id"`
	MatchedName     string `json:"matched_name" msgpack:"matched_name"`
	FundManagerID   uint   `json:"fund_manager_id" msgpack:"fund_manager_id"`
}
