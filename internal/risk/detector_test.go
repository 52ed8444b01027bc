package risk

import "testing"

func TestScanIndonesianKeywords(t *testing.T) {
	cases := []string{
		"saya ingin mengakhiri hidup",
		"aku sudah tidak ingin hidup lagi",
		"rasanya ingin bunuh diri",
	}
	for _, text := range cases {
		if !Scan(text) {
			t.Errorf("expected risk detected in %q", text)
		}
	}
}

func TestScanEnglishKeywords(t *testing.T) {
	cases := []string{
		"i want to kill myself",
		"sometimes I just want to die",
	}
	for _, text := range cases {
		if !Scan(text) {
			t.Errorf("expected risk detected in %q", text)
		}
	}
}

func TestScanCaseInsensitive(t *testing.T) {
	if !Scan("Saya Ingin MENGAKHIRI HIDUP") {
		t.Fatal("scan should be case-insensitive")
	}
}

func TestScanCleanText(t *testing.T) {
	cases := []string{
		"",
		"hari ini cukup berat tapi aku baik-baik saja",
		"thanks for listening, it really helps",
	}
	for _, text := range cases {
		if Scan(text) {
			t.Errorf("unexpected risk detected in %q", text)
		}
	}
}

func TestAdvisoryCarriesResources(t *testing.T) {
	advisory := NewAdvisory()
	if advisory.Type != "risk_detected" {
		t.Fatalf("unexpected advisory type %q", advisory.Type)
	}
	if advisory.Message == "" {
		t.Fatal("advisory message should not be empty")
	}
	if len(advisory.Resources) == 0 {
		t.Fatal("advisory should include at least one crisis resource")
	}
	for _, res := range advisory.Resources {
		if res.Name == "" || res.Contact == "" {
			t.Fatal("each resource needs a name and contact")
		}
	}
}
