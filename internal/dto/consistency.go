package dto

import "github.com/SscSPs/coop_backoffice/internal/core/domain"

// ConsistencyResponse groups the results of each consistency check.
type ConsistencyResponse struct {
	Valid            bool                     `json:"valid"`
	Saldo            domain.ConsistencyResult `json:"saldo"`
	JournalIntegrity domain.ConsistencyResult `json:"journalIntegrity"`
	CrossMode        domain.ConsistencyResult `json:"crossMode"`
}

// RepairResponse is returned by the repair endpoint.
type RepairResponse struct {
	Before domain.ConsistencyResult `json:"before"`
	Repair domain.RepairResult      `json:"repair"`
	After  domain.ConsistencyResult `json:"after"`
}
