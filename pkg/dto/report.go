package dto

import "github.com/shopspring/decimal"

type UserStatistics struct {
	RegisteredThisYear int64 `json:"registeredThisYear"`
	RegisteredLastYear int64 `json:"registeredLastYear"`
	RegisteredLast30   int64 `json:"registeredLast30Days"`
}

// CurrencyTotals holds one figure expressed in every supported currency.
type CurrencyTotals struct {
	GEL decimal.Decimal `json:"GEL"`
	USD decimal.Decimal `json:"USD"`
	EUR decimal.Decimal `json:"EUR"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type TransactionStatistics struct {
	TransactionsLastMonth    int64          `json:"transactionsLastMonth"`
	TransactionsLast6Months  int64          `json:"transactionsLast6Months"`
	TransactionsLastYear     int64          `json:"transactionsLastYear"`
	CommissionIncome         CurrencyTotals `json:"commissionIncome"`
	AverageCommission        CurrencyTotals `json:"averageCommission"`
	DailyTransactions        []DailyCount   `json:"dailyTransactionsLastMonth"`
	TotalAtmWithdrawalAmount CurrencyTotals `json:"totalAtmWithdrawalAmount"`
}
