package budget

import "github.com/warp/budget-rules/generic"

// DefaultCurrencies are registered on import so categories can resolve the
// common codes without any setup.
var DefaultCurrencies = []generic.Currency{
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", Decimals: 2},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", Decimals: 2},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", Decimals: 2},
	{Code: "EUR", Name: "Euro", Symbol: "€", Decimals: 2},
	{Code: "GBP", Name: "Pound Sterling", Symbol: "£", Decimals: 2},
	{Code: "JPY", Name: "Yen", Symbol: "¥", Decimals: 0},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr", Decimals: 2},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Decimals: 2},
}

func init() {
	for _, c := range DefaultCurrencies {
		generic.RegisterCurrency(c)
	}
}
