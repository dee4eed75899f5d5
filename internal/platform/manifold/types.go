package manifold

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// APIUser is the authenticated user as returned by /v0/me.
type APIUser struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Balance       float64 `json:"balance"`
	TotalDeposits float64 `json:"totalDeposits"`
	ProfitCached  struct {
		AllTime float64 `json:"allTime"`
	} `json:"profitCached"`
}

// ToDomainUser converts the API payload to the domain model.
func (u APIUser) ToDomainUser() domain.User {
	return domain.User{
		ID:            u.ID,
		Username:      u.Username,
		Balance:       u.Balance,
		TotalDeposits: u.TotalDeposits,
		AllTimeProfit: u.ProfitCached.AllTime,
	}
}

// APIMarket represents a market as returned by the Manifold API. Search
// results carry a subset of these fields; /v0/slug/{slug} fills in the rest.
type APIMarket struct {
	ID                string          `json:"id"`
	Slug              string          `json:"slug"`
	URL               string          `json:"url"`
	Question          string          `json:"question"`
	CreatorUsername   string          `json:"creatorUsername"`
	OutcomeType       string          `json:"outcomeType"`
	Probability       float64         `json:"probability"`
	Volume            float64         `json:"volume"`
	UniqueBettorCount int             `json:"uniqueBettorCount"`
	CloseTime         *int64          `json:"closeTime"` // milliseconds since epoch
	IsResolved        bool            `json:"isResolved"`
	Description       json.RawMessage `json:"description"`
}

// ToDomainMarket converts the API payload to the domain model.
func (m APIMarket) ToDomainMarket() domain.Market {
	out := domain.Market{
		ID:              m.ID,
		Slug:            m.Slug,
		URL:             m.URL,
		Question:        m.Question,
		Description:     ParseDescription(m.Description),
		CreatorUsername: m.CreatorUsername,
		OutcomeType:     domain.OutcomeTypeOther,
		Probability:     m.Probability,
		Volume:          m.Volume,
		UniqueBettors:   m.UniqueBettorCount,
		IsResolved:      m.IsResolved,
	}
	if m.OutcomeType == "BINARY" {
		out.OutcomeType = domain.OutcomeTypeBinary
	}
	if m.CloseTime != nil {
		t := time.UnixMilli(*m.CloseTime)
		out.CloseTime = &t
	}
	return out
}

// APIBetResponse is the response from POST /v0/bet.
type APIBetResponse struct {
	BetID      string  `json:"betId"`
	ContractID string  `json:"contractId"`
	Outcome    string  `json:"outcome"`
	Amount     float64 `json:"amount"`
	Shares     float64 `json:"shares"`
	ProbBefore float64 `json:"probBefore"`
	ProbAfter  float64 `json:"probAfter"`
	CreatedAt  int64   `json:"createdTime"`
}

// APIError is the error body the Manifold API returns alongside non-2xx codes.
type APIError struct {
	Message string `json:"message"`
}

// tiptapNode is one node of the rich-text document Manifold uses for market
// descriptions. Only text leaves two levels deep are extracted, matching how
// descriptions are rendered in the market header.
type tiptapNode struct {
	Type    string       `json:"type"`
	Text    string       `json:"text"`
	Content []tiptapNode `json:"content"`
}

// ParseDescription extracts plain text from a market description, which the
// API serves either as a plain string or as a rich-text document.
func ParseDescription(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "Not specified."
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var doc tiptapNode
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Content) == 0 {
		return "Not specified."
	}

	var parts []string
	for _, block := range doc.Content {
		for _, leaf := range block.Content {
			if leaf.Type == "text" && leaf.Text != "" {
				parts = append(parts, leaf.Text)
			}
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return "Description not parsable."
	}
	return text
}
