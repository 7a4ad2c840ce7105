package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleContractText = `
ДОГОВОР ПОДРЯДА № 001/2024
от 15.01.2024

Заказчик: ООО «СтройИнвест»
Подрядчик: АО «МонтажСпецСтрой»

Предмет договора: выполнение строительно-монтажных работ

Цена договора составляет 1 500 000,00 руб., в том числе НДС 20 % — 250 000,00 руб.

Срок выполнения работ: до 31.12.2024
Неустойка: 0,1% от суммы договора за каждый день просрочки
Гарантийный срок на выполненные работы составляет 24 месяца.
Оплата производится в течение 30 банковских дней.
`

func TestExtractFieldsFromContract(t *testing.T) {
	fields := ExtractFields(sampleContractText)

	assert.Equal(t, "001/2024", fields.Number)
	assert.Equal(t, "15.01.2024", fields.ContractDate)
	assert.Equal(t, "ООО «СтройИнвест»", fields.CustomerName)
	assert.Equal(t, "АО «МонтажСпецСтрой»", fields.ContractorName)
	assert.Contains(t, fields.Subject, "строительно-монтажных")
	assert.Equal(t, "1500000,00", fields.AmountIncludingVAT)
	assert.Equal(t, "20", fields.VATRate)
	assert.Equal(t, "250000,00", fields.VATAmount)
	assert.Equal(t, "31.12.2024", fields.Deadline)
	assert.Contains(t, fields.Penalties, "0,1%")
	assert.Equal(t, "24", fields.WarrantyMonths)
	assert.Equal(t, "30", fields.PaymentTermsDays)
}

func TestExtractFieldsEmptyText(t *testing.T) {
	fields := ExtractFields("")
	assert.Equal(t, Fields{}, fields)
}

func TestExtractFieldsPartialDocument(t *testing.T) {
	fields := ExtractFields("Договор № 7-А\nнемного мусора от OCR")
	assert.Equal(t, "7-А", fields.Number)
	assert.Empty(t, fields.CustomerName)
	assert.Empty(t, fields.AmountIncludingVAT)
}

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, "1500000,00", normalizeAmount("1 500 000,00"))
	assert.Equal(t, "", normalizeAmount("  "))
}
