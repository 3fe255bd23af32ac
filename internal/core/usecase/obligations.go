package usecase

import "strings"

// obligationTrigger adds themes when its keyword appears in a lower-cased
// title. Several triggers may fire for one title; themes accumulate as a set.
type obligationTrigger struct {
	keyword string
	themes  []string
}

var obligationTriggers = []obligationTrigger{
	{"kyc", []string{"AML/CFT - Customer Due Diligence"}},
	{"aml", []string{"AML/CFT - Customer Due Diligence"}},
	{"money laundering", []string{"AML/CFT - Customer Due Diligence"}},
	{"sanction", []string{"AML/CFT - Sanctions Screening"}},
	{"employee", []string{"Labor Law", "Social Insurance"}},
	{"staff", []string{"Labor Law", "Social Insurance"}},
	{"payroll", []string{"Labor Law", "Social Insurance"}},
	{"leave", []string{"Labor Law"}},
	{"recruit", []string{"Labor Law"}},
	{"privacy", []string{"Data Protection"}},
	{"data protection", []string{"Data Protection"}},
	{"personal data", []string{"Data Protection"}},
	{"security", []string{"Information Security"}},
	{"incident", []string{"Information Security"}},
	{"access control", []string{"Information Security"}},
	{"continuity", []string{"Business Continuity"}},
	{"disaster", []string{"Business Continuity"}},
	{"risk", []string{"Risk Management"}},
	{"audit", []string{"Internal Audit"}},
	{"vendor", []string{"Outsourcing & Third Parties"}},
	{"outsourc", []string{"Outsourcing & Third Parties"}},
	{"procurement", []string{"Outsourcing & Third Parties"}},
	{"conduct", []string{"Corporate Governance"}},
	{"conflict of interest", []string{"Corporate Governance"}},
	{"ethics", []string{"Corporate Governance"}},
	{"complaint", []string{"Consumer Protection"}},
	{"customer", []string{"Consumer Protection"}},
	{"capital", []string{"Prudential Requirements"}},
	{"liquidity", []string{"Prudential Requirements"}},
}

// MapObligations attaches regulatory-obligation themes to one entry from the
// department default plus keyword triggers over the lower-cased title. The
// default theme is never removed; firing no trigger is a valid outcome for
// generic documents. Order is deterministic: default first, then triggers in
// table order.
func MapObligations(title, defaultTheme string) []string {
	var themes []string
	seen := make(map[string]struct{})
	add := func(theme string) {
		if theme == "" {
			return
		}
		if _, ok := seen[theme]; ok {
			return
		}
		seen[theme] = struct{}{}
		themes = append(themes, theme)
	}

	add(defaultTheme)
	lower := strings.ToLower(title)
	for _, trigger := range obligationTriggers {
		if strings.Contains(lower, trigger.keyword) {
			for _, theme := range trigger.themes {
				add(theme)
			}
		}
	}
	return themes
}
