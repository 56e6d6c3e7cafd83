package omr

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SubjectCode is the canonical short token for a school subject.
type SubjectCode string

const (
	SubjectTUR SubjectCode = "TUR" // Türkçe
	SubjectMAT SubjectCode = "MAT" // Matematik
	SubjectFEN SubjectCode = "FEN" // Fen Bilimleri
	SubjectINK SubjectCode = "INK" // T.C. İnkılap Tarihi
	SubjectDIN SubjectCode = "DIN" // Din Kültürü
	SubjectING SubjectCode = "ING" // İngilizce / Yabancı Dil
	SubjectSOS SubjectCode = "SOS" // Sosyal Bilgiler
	SubjectEDB SubjectCode = "EDB" // Edebiyat
	SubjectTAR SubjectCode = "TAR" // Tarih
	SubjectCOG SubjectCode = "COG" // Coğrafya
	SubjectFIZ SubjectCode = "FIZ" // Fizik
	SubjectKIM SubjectCode = "KIM" // Kimya
	SubjectBIY SubjectCode = "BIY" // Biyoloji
	SubjectFEL SubjectCode = "FEL" // Felsefe
)

type subjectKeyword struct {
	keyword string
	code    SubjectCode
}

// subjectKeywords is matched in order against the folded label; the first
// hit wins. "inkilap" sits above "tarih" because İnkılap Tarihi labels
// contain both.
var subjectKeywords = []subjectKeyword{
	{"turkce", SubjectTUR},
	{"turk dili", SubjectTUR},
	{"inkilap", SubjectINK},
	{"matematik", SubjectMAT},
	{"fen", SubjectFEN},
	{"din kult", SubjectDIN},
	{"din", SubjectDIN},
	{"ingilizce", SubjectING},
	{"yabanci", SubjectING},
	{"sosyal", SubjectSOS},
	{"edebiyat", SubjectEDB},
	{"tarih", SubjectTAR},
	{"cografya", SubjectCOG},
	{"fizik", SubjectFIZ},
	{"kimya", SubjectKIM},
	{"biyoloji", SubjectBIY},
	{"felsefe", SubjectFEL},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldLabel lowercases and strips diacritics so "FEN BİLİMLERİ" and
// "fen bilimleri" match the same keyword. Dotless ı needs its own case:
// it has no decomposition, and Unicode lowercasing maps I elsewhere.
func foldLabel(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case 'ı', 'I':
			return 'i'
		}
		return unicode.ToLower(r)
	}, out)
}

// SubjectFromLabel resolves a template label to a subject code. The first
// keyword hit wins; labels matching nothing yield no subject.
func SubjectFromLabel(label string) (SubjectCode, bool) {
	folded := foldLabel(label)
	for _, kw := range subjectKeywords {
		if strings.Contains(folded, kw.keyword) {
			return kw.code, true
		}
	}
	return "", false
}

// RemapSubjects groups decoded segments by subject. Segments sharing a
// subject are concatenated in encounter order: physical forms sometimes
// split one subject across two byte ranges. Segments whose label resolves
// to no subject stay out of the map (their marks still reach the flat
// array via FlattenMarks) and are reported as warnings.
func RemapSubjects(segs []Segment, total int) (map[SubjectCode][]Mark, []SubjectCode, []string) {
	bySubject := make(map[SubjectCode][]Mark)
	var order []SubjectCode
	var warnings []string

	for _, s := range segs {
		code, ok := SubjectFromLabel(s.Label)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("segment %q matched no subject; answers kept in flat list only", s.Label))
			continue
		}
		if _, ok := bySubject[code]; !ok {
			order = append(order, code)
		}
		bySubject[code] = append(bySubject[code], s.Marks...)
	}

	sum := 0
	for _, marks := range bySubject {
		sum += len(marks)
	}
	if sum != total {
		warnings = append(warnings, fmt.Sprintf("subject buckets hold %d slots, expected %d", sum, total))
	}
	return bySubject, order, warnings
}
