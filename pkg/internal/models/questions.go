package models

// Question is reference data fetched once per session, never written back.
type Question struct {
	ID             uint     `json:"id"`
	Survey         uint     `json:"survey"`
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle"`
	Explanation    string   `json:"explanation"`
	CheatingPaper  string   `json:"cheating_paper"`
	ImageURL       string   `json:"image_url"`
	DurationLimit  int      `json:"duration_limit"`
	IsEconomicBill bool     `json:"is_economic_bill"`
	FactorReversed bool     `json:"factor_reversed"`
	Choices        []Choice `json:"choices"`
}

type Choice struct {
	ID       uint   `json:"id"`
	Question uint   `json:"question"`
	Context  string `json:"context"`
	Factor   int    `json:"factor"`
}
