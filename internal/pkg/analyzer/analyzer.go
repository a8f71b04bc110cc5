package analyzer

import "context"

// Report is the structured viability report produced for one business idea.
type Report struct {
	ExecutiveSummary string        `json:"executiveSummary"`
	Score            Score         `json:"score"`
	Evidence         []Quote       `json:"evidence"`
	Potential        Potential     `json:"potential"`
	Competitors      Competitors   `json:"competitors"`
	Sources          []Source      `json:"sources"`
	Alternatives     []Alternative `json:"alternatives"`
	Query            string        `json:"query"`
	ModelUsed        string        `json:"modelUsed"`
}

// Score is the 0-100 viability score with its component breakdown.
type Score struct {
	Total          int    `json:"total"`
	Volume         int    `json:"volume"`
	Intensity      int    `json:"intensity"`
	Gap            int    `json:"gap"`
	Momentum       int    `json:"momentum"`
	Interpretation string `json:"interpretation"`
}

// Quote is one piece of market evidence with its attribution.
type Quote struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Date   string `json:"date"`
	URL    string `json:"url,omitempty"`
}

// PotentialMetric scores one dimension of business potential.
type PotentialMetric struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

type Potential struct {
	Monetization  PotentialMetric `json:"monetization"`
	Execution     PotentialMetric `json:"execution"`
	Defensibility PotentialMetric `json:"defensibility"`
}

type Competitor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Weakness    string `json:"weakness,omitempty"`
}

type Competitors struct {
	List         []Competitor `json:"list"`
	MarketStatus string       `json:"marketStatus"`
	IsSaturated  bool         `json:"isSaturated"`
}

type Source struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Alternative struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator produces a viability report for a business idea. The tier picks
// the underlying model.
type Generator interface {
	Analyze(ctx context.Context, query, tier string) (*Report, error)
}
