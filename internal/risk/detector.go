// Package risk scans outgoing message text for self-harm risk language.
// Detection is purely advisory: a match attaches crisis resources to the
// response and never blocks or alters the stored message.
package risk

import "strings"

// keywords associated with self-harm risk, in Indonesian and English for
// broader coverage. Matched case-insensitively as substrings.
var keywords = []string{
	// Indonesian
	"bunuh diri", "ingin mati", "tidak ingin hidup", "mengakhiri hidup",
	"menyakiti diri", "melukai diri", "potong nadi", "gantung diri",
	"overdosis", "minum racun", "lompat dari",
	// English
	"kill myself", "want to die", "end my life", "suicide",
	"self harm", "cut myself", "hurt myself", "overdose",
	"jump off", "hang myself",
}

// Scan reports whether text contains any risk keyword.
func Scan(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Resource is a crisis support contact included in advisories.
type Resource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Advisory is the non-blocking warning attached to a post response when
// risk language is detected.
type Advisory struct {
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Resources []Resource `json:"resources"`
}

// NewAdvisory builds the advisory payload shown to the sender.
func NewAdvisory() *Advisory {
	return &Advisory{
		Type: "risk_detected",
		Message: "Kami mendeteksi bahwa kamu mungkin sedang dalam kondisi yang sulit. " +
			"Ingat, kamu tidak sendirian. Jika kamu membutuhkan bantuan segera, " +
			"silakan hubungi layanan krisis atau kunjungi tab \"Butuh Bantuan Sekarang\".",
		Resources: []Resource{
			{Name: "Into The Light Indonesia", Contact: "119 ext 8"},
			{Name: "Yayasan Pulih", Contact: "(021) 788-42580"},
		},
	}
}
