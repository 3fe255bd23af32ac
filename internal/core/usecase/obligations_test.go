package usecase

import (
	"testing"
)

func TestMapObligationsKeepsDefaultTheme(t *testing.T) {
	themes := MapObligations("Generic Filing Checklist", "Corporate Governance")
	if len(themes) != 1 || themes[0] != "Corporate Governance" {
		t.Fatalf("expected only the department default, got %v", themes)
	}
}

func TestMapObligationsKeywordTriggers(t *testing.T) {
	themes := MapObligations("KYC Onboarding Procedure", "Consumer Protection")
	if !contains(themes, "Consumer Protection") {
		t.Fatalf("default theme was dropped: %v", themes)
	}
	if !contains(themes, "AML/CFT - Customer Due Diligence") {
		t.Fatalf("kyc trigger did not fire: %v", themes)
	}
}

func TestMapObligationsAccumulatesWithoutDuplicates(t *testing.T) {
	themes := MapObligations("Employee Payroll and Staff Leave Policy", "Labor Law")
	want := map[string]int{}
	for _, theme := range themes {
		want[theme]++
		if want[theme] > 1 {
			t.Fatalf("duplicate theme %q in %v", theme, themes)
		}
	}
	if !contains(themes, "Labor Law") || !contains(themes, "Social Insurance") {
		t.Fatalf("employee/payroll triggers missing: %v", themes)
	}
}

func TestMapObligationsNoDefaultNoTrigger(t *testing.T) {
	if themes := MapObligations("Meeting Minutes Template", ""); len(themes) != 0 {
		t.Fatalf("expected no themes, got %v", themes)
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
