package config

import "github.com/asimoes/retrosim/internal/domain"

// DefaultCompanies returns the simulated universe: a thematic basket of
// China AI and robotics names quoted on US, Hong Kong and mainland
// exchanges. Returned as a fresh slice so callers can build alternate
// scenarios without touching shared state.
func DefaultCompanies() []domain.Company {
	return []domain.Company{
		{Name: "Baidu", Ticker: "BIDU", TargetWeight: 15, Currency: "USD"},
		{Name: "Alibaba", Ticker: "BABA", TargetWeight: 15, Currency: "USD"},
		{Name: "Tencent", Ticker: "0700.HK", TargetWeight: 10, Currency: "HKD"},
		{Name: "SenseTime", Ticker: "0020.HK", TargetWeight: 8, Currency: "HKD"},
		{Name: "iFlytek", Ticker: "002230.SZ", TargetWeight: 7, Currency: "CNY"},
		{Name: "SMIC", Ticker: "0981.HK", TargetWeight: 12, Currency: "HKD"},
		{Name: "Cambricon", Ticker: "688256.SS", TargetWeight: 8, Currency: "CNY"},
		{Name: "Estun Automation", Ticker: "002747.SZ", TargetWeight: 10, Currency: "CNY"},
		{Name: "Siasun Robot", Ticker: "300024.SZ", TargetWeight: 7, Currency: "CNY"},
		{Name: "Hygon", Ticker: "688041.SS", TargetWeight: 8, Currency: "CNY"},
	}
}

// DefaultCurrencyPairs returns the conversion table for the default
// universe. The Yahoo pairs are quoted as local-per-USD, hence Invert.
func DefaultCurrencyPairs() map[string]domain.CurrencyPairConfig {
	return map[string]domain.CurrencyPairConfig{
		"USD": {Currency: "USD"},
		"HKD": {Currency: "HKD", Symbol: "USDHKD=X", Invert: true},
		"CNY": {Currency: "CNY", Symbol: "USDCNY=X", Invert: true},
	}
}
