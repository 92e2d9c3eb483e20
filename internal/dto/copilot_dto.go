package dto

// ChatRequest is one conversational turn. ThreadId is the opaque caller-owned
// conversation identifier that scopes all short-term memory.
type ChatRequest struct {
	ThreadId string `json:"thread_id" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

type ChatResponse struct {
	ThreadId     string `json:"thread_id"`
	Answer       string `json:"answer"`
	ResolvedId   string `json:"resolved_id,omitempty"`
	Collection   string `json:"collection,omitempty"`
	AwaitingPick bool   `json:"awaiting_pick"`
}

// ResolveRequest is the direct resolution call, bypassing conversation state.
type ResolveRequest struct {
	Query           string `json:"query" validate:"required"`
	Collection      string `json:"collection" validate:"required"`
	IncludeInactive bool   `json:"include_inactive"`
	Limit           int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type MatchDTO struct {
	Id    string  `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type ResolveResponse struct {
	Outcome    string     `json:"outcome"`
	Match      *MatchDTO  `json:"match,omitempty"`
	Candidates []MatchDTO `json:"candidates"`
}
