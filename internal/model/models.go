package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyDomestic Currency = "PEN"
	CurrencyForeign  Currency = "USD"
)

type Company struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
}

// SettlementPeriod is the season/contract context a liquidation is computed
// against. PricePerTonUSD and BasePercent are nil when not configured.
type SettlementPeriod struct {
	Key                  string           `json:"key"`
	Company              Company          `json:"company"`
	SeasonName           string           `json:"season_name"`
	SeasonMaxCaptureTons decimal.Decimal  `json:"season_max_capture_tons"`
	PricePerTonUSD       *decimal.Decimal `json:"price_per_ton_usd,omitempty"`
	BasePercent          *decimal.Decimal `json:"base_percent,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}

type QuotaAllocation struct {
	ZoneID       string          `json:"zone_id"`
	Owned        bool            `json:"owned"`
	Name         string          `json:"name"`
	Fishing      bool            `json:"fishing"`
	PricePerTon  decimal.Decimal `json:"price_per_ton"`
	SharePercent decimal.Decimal `json:"share_percent"`
}

func (q QuotaAllocation) OwnershipLabel() string {
	if q.Owned {
		return "OWN"
	}
	return "LEASED"
}

func (q QuotaAllocation) StateLabel() string {
	if q.Fishing {
		return "FISHING"
	}
	return "LEASE"
}

type Landing struct {
	UnloadedAt  time.Time       `json:"unloaded_at"`
	SpeciesCode string          `json:"species_code"`
	SpeciesName string          `json:"species_name"`
	Tonnage     decimal.Decimal `json:"tonnage"`
}

// Deduction is a charge against the settlement. Amount is denominated in
// Currency; the other currency's amount is derived from the day's rate.
type Deduction struct {
	OperatedAt  time.Time       `json:"operated_at"`
	Currency    Currency        `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ProductCode string          `json:"product_code,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
}

func (d Deduction) Domestic() bool {
	return d.Currency != CurrencyForeign
}

// Label is the free-text description, or the linked product when the
// description is empty.
func (d Deduction) Label() string {
	if d.Description != "" {
		return d.Description
	}
	if d.ProductName != "" {
		return d.ProductName
	}
	return d.ProductCode
}

// SettlementData is everything the report needs for one period.
type SettlementData struct {
	Period     SettlementPeriod
	Quotas     []QuotaAllocation
	Landings   []Landing
	Deductions []Deduction
}

type Logo struct {
	Data     []byte
	MimeType string
}
