package chat

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn entry. Messages are append-only and ordered by
// send order.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session owns an ordered message list plus the document context snapshot
// taken at creation. The snapshot is never re-derived per turn.
type Session struct {
	ID         string          `json:"id"`
	AnalysisID string          `json:"analysisId"`
	Context    DocumentContext `json:"context"`
	Messages   []Message       `json:"messages"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// DocumentContext is the bounded, prompt-ready view over a completed
// analysis. It is immutable after creation; chat turns read it but never
// write derived analysis back.
type DocumentContext struct {
	DocType        string  `json:"docType"`
	Confidence     float64 `json:"confidence"`
	UserRole       string  `json:"userRole"`
	Excerpt        string  `json:"excerpt"`
	RiskSummary    string  `json:"riskSummary"`
	KeyFiguresText string  `json:"keyFiguresText"`
	ClausesText    string  `json:"clausesText"`
	MissingText    string  `json:"missingText"`
}
