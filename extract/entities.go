package extract

import (
	"regexp"
	"strings"
)

// Entity patterns for Russian construction-contract documents. OCR output
// is noisy, so every pattern is case-insensitive and tolerant of extra
// whitespace; first match wins.
var (
	reNumber = regexp.MustCompile(`(?i)договор[а-я]*\s*(?:подряда\s*)?№\s*([\d]+[\d/\-А-Яа-яA-Za-z]*)`)
	reDate   = regexp.MustCompile(`(?i)(?:от|дата)\s*[«"]?\s*(\d{1,2}[.\s][а-я]*\s?\d{1,2}?[.\s]?\d{4}|\d{1,2}\.\d{1,2}\.\d{4})`)

	reCustomer   = regexp.MustCompile(`(?i)заказчик[:\s]+([^\n,]+)`)
	reContractor = regexp.MustCompile(`(?i)подрядчик[:\s]+([^\n,]+)`)
	reSubject    = regexp.MustCompile(`(?i)предмет\s+договора[:\s]*([^\n]+)`)

	reAmountVAT = regexp.MustCompile(`(?i)(?:цена|стоимость|сумма)[^\n\d]{0,60}?([\d][\d\s]*(?:[.,]\d{2})?)\s*(?:руб|₽)`)
	reVATRate   = regexp.MustCompile(`(?i)НДС\s*[\-–]?\s*(\d{1,2})\s*%`)
	reVATAmount = regexp.MustCompile(`(?i)НДС[^\n]{0,40}?([\d][\d\s]*[.,]\d{2})\s*(?:руб|₽)`)

	reDeadline   = regexp.MustCompile(`(?i)срок[^\n]{0,40}(?:до|не\s+поздн[ее]+)\s*[«"]?\s*(\d{1,2}\.\d{1,2}\.\d{4})`)
	rePenalty    = regexp.MustCompile(`(?i)(?:неустойк|пен[яи]|штраф)[^\n]{0,20}[:\s]([^\n]+)`)
	reWarranty   = regexp.MustCompile(`(?i)гарантийный\s+срок[^\d\n]{0,40}(\d{1,3})\s*(?:мес|месяц)`)
	rePayTerms   = regexp.MustCompile(`(?i)оплат[аыу][^\d\n]{0,60}(\d{1,3})\s*(?:банковских\s+|рабочих\s+|календарных\s+)?дн`)
)

// ExtractFields pulls structured contract fields from recognized text.
// Missing fields stay empty; extraction itself never fails.
func ExtractFields(text string) Fields {
	return Fields{
		Number:             firstMatch(reNumber, text),
		ContractDate:       firstMatch(reDate, text),
		CustomerName:       firstMatch(reCustomer, text),
		ContractorName:     firstMatch(reContractor, text),
		Subject:            firstMatch(reSubject, text),
		AmountIncludingVAT: normalizeAmount(firstMatch(reAmountVAT, text)),
		VATRate:            firstMatch(reVATRate, text),
		VATAmount:          normalizeAmount(firstMatch(reVATAmount, text)),
		Deadline:           firstMatch(reDeadline, text),
		Penalties:          firstMatch(rePenalty, text),
		WarrantyMonths:     firstMatch(reWarranty, text),
		PaymentTermsDays:   firstMatch(rePayTerms, text),
	}
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// normalizeAmount collapses OCR-introduced digit-group spaces:
// "1 500 000,00" -> "1500000,00"
func normalizeAmount(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}
