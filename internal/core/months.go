package core

import (
	"time"

	"golang.org/x/text/language"
)

type monthTable struct {
	tag   language.Tag
	names [12]string
}

// monthTables lists the locales with built-in month names. English must stay
// first: it is the matcher's fallback.
var monthTables = []monthTable{
	{language.MustParse("en"), [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}},
	{language.MustParse("fr"), [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}},
	{language.MustParse("de"), [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"}},
	{language.MustParse("es"), [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}},
	{language.MustParse("it"), [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"}},
	{language.MustParse("pt"), [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}},
	{language.MustParse("nl"), [12]string{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"}},
	{language.MustParse("sv"), [12]string{"januari", "februari", "mars", "april", "maj", "juni", "juli", "augusti", "september", "oktober", "november", "december"}},
	{language.MustParse("da"), [12]string{"januar", "februar", "marts", "april", "maj", "juni", "juli", "august", "september", "oktober", "november", "december"}},
	{language.MustParse("nb"), [12]string{"januar", "februar", "mars", "april", "mai", "juni", "juli", "august", "september", "oktober", "november", "desember"}},
	{language.MustParse("pl"), [12]string{"styczeń", "luty", "marzec", "kwiecień", "maj", "czerwiec", "lipiec", "sierpień", "wrzesień", "październik", "listopad", "grudzień"}},
	{language.MustParse("ja"), [12]string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月", "10月", "11月", "12月"}},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(monthTables))
	for i, t := range monthTables {
		tags[i] = t.tag
	}
	return language.NewMatcher(tags)
}()

// MonthNames returns the month display names for locale, January first.
// An empty, malformed or unsupported locale yields English names.
func MonthNames(locale string) [12]string {
	if locale == "" {
		return monthTables[0].names
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return monthTables[0].names
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return monthTables[0].names
	}
	return monthTables[idx].names
}

// MonthName returns the display name of m for locale.
func MonthName(m time.Month, locale string) string {
	if m < time.January || m > time.December {
		return ""
	}
	return MonthNames(locale)[m-1]
}

// SupportedLocales returns the base locales with built-in month names.
func SupportedLocales() []string {
	out := make([]string, len(monthTables))
	for i, t := range monthTables {
		out[i] = t.tag.String()
	}
	return out
}
