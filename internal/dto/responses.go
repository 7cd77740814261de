package dto

import (
	"github.com/anyulbade/quota-settlement/internal/repository"
)

type PeriodResponse struct {
	Key         string `json:"key"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	SeasonName  string `json:"season_name"`
	Quotas      int    `json:"quota_count"`
	Landings    int    `json:"landing_count"`
	Deductions  int    `json:"deduction_count"`
	ReportURL   string `json:"report_url"`
	SummaryURL  string `json:"summary_url"`
}

func NewPeriodResponse(row repository.PeriodRow) PeriodResponse {
	base := "/api/v1/settlements/" + row.Key
	return PeriodResponse{
		Key:         row.Key,
		CompanyID:   row.CompanyID,
		CompanyName: row.CompanyName,
		SeasonName:  row.SeasonName,
		Quotas:      row.Quotas,
		Landings:    row.Landings,
		Deductions:  row.Deductions,
		ReportURL:   base + "/report",
		SummaryURL:  base + "/summary",
	}
}
