package omr

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identity holds the non-answer fields read off one scanner line.
type Identity struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	NationalID  string `json:"national_id,omitempty"`
	ClassCode   string `json:"class_code,omitempty"`
	Booklet     string `json:"booklet,omitempty"`
}

type identityKind int

const (
	idUnknown identityKind = iota
	idStudentID
	idStudentName
	idNationalID
	idClassCode
	idBooklet
)

// identityKeywords is matched in order against the folded label. "kimlik"
// sits above the student-number keywords so "TC KİMLİK NO" doesn't land in
// the student-id slot via its trailing "no".
var identityKeywords = []struct {
	keyword string
	kind    identityKind
}{
	{"kimlik", idNationalID},
	{"tckn", idNationalID},
	{"kitapcik", idBooklet},
	{"sinif", idClassCode},
	{"sube", idClassCode},
	{"ogrenci no", idStudentID},
	{"numara", idStudentID},
	{"no", idStudentID},
	{"soyad", idStudentName},
	{"isim", idStudentName},
	{"ad", idStudentName},
}

func identityKindOf(label string) identityKind {
	folded := foldLabel(label)
	for _, kw := range identityKeywords {
		if strings.Contains(folded, kw.keyword) {
			return kw.kind
		}
	}
	return idUnknown
}

var turkishTitle = cases.Title(language.Turkish)

// ExtractIdentity reads the identity fields by exact byte range. Names get
// Turkish title casing so the all-caps scanner output round-trips dotted
// and dotless i correctly. The booklet field goes through ParseBooklet.
func ExtractIdentity(line string, fields []FieldDef) (Identity, []string) {
	var id Identity
	var warnings []string

	for _, f := range fields {
		raw := strings.TrimSpace(extractRange(line, f.Start, f.End))
		switch identityKindOf(f.Label) {
		case idStudentID:
			id.StudentID = raw
		case idStudentName:
			id.StudentName = turkishTitle.String(raw)
		case idNationalID:
			id.NationalID = raw
		case idClassCode:
			id.ClassCode = raw
		case idBooklet:
			booklet, ws := ParseBooklet(raw)
			id.Booklet = booklet
			warnings = append(warnings, ws...)
		default:
			warnings = append(warnings, fmt.Sprintf("identity field %q not recognized; ignored", f.Label))
		}
	}
	return id, warnings
}

// extractRange returns line[start-1..end-1] (1-indexed, inclusive),
// clipped to the line.
func extractRange(line string, start, end int) string {
	runes := []rune(line)
	if start < 1 {
		start = 1
	}
	if start-1 >= len(runes) {
		return ""
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start-1 : end])
}

// ParseBooklet picks the booklet letter out of a booklet field. Scanners
// sometimes leave a stray letter in the first slot ("DB"); empirically the
// trailing character is the true marker, so the last valid letter wins.
// Fields carrying more than two letters are resolved the same way but
// flagged, since that pattern is outside the known scanner artifacts.
func ParseBooklet(raw string) (string, []string) {
	var letters []rune
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if r >= 'A' && r <= 'D' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return "", nil
	}
	var warnings []string
	if len(letters) > 2 {
		warnings = append(warnings, fmt.Sprintf("booklet field %q holds %d letters; using last", raw, len(letters)))
	}
	return string(letters[len(letters)-1]), warnings
}
