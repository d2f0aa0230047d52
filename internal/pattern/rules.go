package pattern

import "regexp"

// Scarcity: a number followed by an availability keyword, or "last item".
// Examples: "10 pieces available", "99% claimed", "10 Stück verfügbar".
var (
	scarcityEN = compile(`\d+\s*(?:%|pieces?|pcs\.?|pc\.?|ct\.?|items?)?\s*(?:available|sold|claimed|redeemed)|(?:last|final)\s*(?:article|item)`)
	scarcityDE = compile(`\d+\s*(?:%|stücke?|stk\.?)?\s*(?:verfügbar|verkauft|eingelöst)|letzter\s*Artikel`)
)

// Social proof: a number of people who bought or rated a product.
// Examples: "5 other customers also bought this article",
// "6 Käufer*innen haben folgende Produkte".
var (
	socialProofEN = compile(`\d+\s*(?:other)?\s*(?:customers?|clients?|buyers?|users?|shoppers?|purchasers?|people)\s*(?:have\s+)?\s*(?:(?:also\s*)?(?:bought|purchased|ordered)|(?:rated|reviewed))\s*(?:this|the\s*following)\s*(?:product|article|item)s?`)
	socialProofDE = compile(`\d+\s*(?:andere)?\s*(?:Kunden?|Käufer|Besteller|Nutzer|Leute|Person(?:en)?)(?:(?:\s*/\s*)?[_\-\*]?innen)?\s*(?:(?:kauften|bestellten|haben)\s*(?:auch|ebenfalls)?|(?:bewerteten|rezensierten))\s*(?:diese[ns]?|(?:den|die|das)?\s*folgenden?)\s*(?:Produkte?|Artikel)`)
)

// price matches an amount in euro, dollar or pound, symbol or code on either side.
const price = `(?:(?:€|EUR|GBP|£|\$|USD)\s*\d+(?:\.\d{2})?|\d+(?:\.\d{2})?\s*(?:euros?|€|EUR|GBP|£|pounds?(?:\s*sterling)?|\$|USD|dollars?))`

// monthly matches "per month", "/month", "a month", "pm" and "/m".
const monthly = `(?:(?:(?:per|/|a)\s*month)|(?:p|/)m)`

// Forced continuity: a recurring price that starts after a trial period.
var (
	forcedContinuityEN = []string{
		// "$10.99/month after", "11 GBP a month from month 4"
		price + `\s*` + monthly + `\s*(?:after|from\s*(?:month|day)\s*\d+)`,
		// "$10.99 after 12 months", "11 GBP from month 4"
		price + `\s*(?:after\s*(?:the)?\s*\d+(?:th|nd|rd|th)?\s*(?:months?|days?)|from\s*(?:month|day)\s*\d+)`,
		// "after that $23.99 per month", "then GBP 10pm"
		`(?:after\s*that|then|afterwards|subsequently)\s*` + price + `\s*` + monthly,
		// "after the 24th months only €23.99", "after 6 months $10"
		`after\s*(?:the)?\s*\d+(?:th|nd|rd|th)?\s*months?\s*(?:only|just)?\s*` + price,
	}
	forcedContinuityDE = []string{
		// "10,99 Euro pro Monat ab dem 12. Monat", "11€ nach 30 Tagen"
		`\d+(?:,\d{2})?\s*(?:Euro|€)\s*(?:(?:pro|im|/)\s*Monat)?\s*(?:ab\s*(?:dem)?\s*\d+\.\s*Monat|nach\s*\d+\s*(?:Monaten|Tagen)|nach\s*(?:einem|1)\s*Monat)`,
		// "anschließend 23,99€ pro Monat", "danach 10 Euro/Monat"
		`(?:anschließend|danach)\s*\d+(?:,\d{2})?\s*(?:Euro|€)\s*(?:pro|im|/)\s*Monat`,
		// "23,99€ pro Monat anschließend", "10 Euro/Monat danach"
		`\d+(?:,\d{2})?\s*(?:Euro|€)\s*(?:pro|im|/)\s*Monat\s*(?:anschließend|danach)`,
		// "ab dem 24. Monat nur 23,99 Euro", "ab 6. Monat 9,99€"
		`ab(?:\s*dem)?\s*\d+\.\s*Monat(?:\s*nur)?\s*\d+(?:,\d{2})?\s*(?:Euro|€)`,
	}
)

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = compile(e)
	}
	return out
}
