package policy

import "time"

const (
	EventRepositoryCreated = "PolicyRepositoryCreated"
	EventPolicyAdded       = "PolicyAdded"
	EventPolicyRevised     = "PolicyRevised"
	EventPolicyRemoved     = "PolicyRemoved"
)

type RepositoryCreated struct {
	RepositoryID string    `json:"repository_id"`
	Name         string    `json:"name"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type PolicyAdded struct {
	RepositoryID string    `json:"repository_id"`
	Code         string    `json:"code"` // Stable short identifier, e.g. "SEC-004"
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	AddedAt      time.Time `json:"added_at"`
}

type PolicyRevised struct {
	RepositoryID string    `json:"repository_id"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	RevisedAt    time.Time `json:"revised_at"`
}

type PolicyRemoved struct {
	RepositoryID string    `json:"repository_id"`
	Code         string    `json:"code"`
	RemovedAt    time.Time `json:"removed_at"`
}
