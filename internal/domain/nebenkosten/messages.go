package nebenkosten

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// messages holds the form texts, keyed by entity.field.rule.
var messages = map[string]string{
	"period.from.required": "Startdatum ist erforderlich",
	"period.to.required":   "Enddatum ist erforderlich",
	"period.to.gtfield":    "Das Enddatum muss nach dem Startdatum liegen.",

	"landlord.name.required":   "Name des Vermieters ist erforderlich",
	"landlord.name.max":        "Name zu lang",
	"landlord.street.required": "Straße ist erforderlich",
	"landlord.street.max":      "Straße darf nicht länger als 100 Buchstaben lang sein",
	"landlord.zip.min":         "PLZ muss mind. 5 Zeichen haben",
	"landlord.zip.max":         "PLZ darf nicht länger als 10 Zeichen sein",
	"landlord.city.required":   "Stadt ist erforderlich",
	"landlord.city.max":        "Stadt darf nicht länger als 100 Buchstaben lang sein",
	"landlord.email.email":     "Ungültige E-Mail",
	"landlord.iban.min":        "IBAN zu kurz",
	"landlord.iban.max":        "IBAN zu lang",
	"landlord.bankName.max":    "Bankname darf nicht länger als 100 Zeichen sein",
	"landlord.bic.max":         "BIC zu lang",

	"property.street.required":  "Straße ist erforderlich",
	"property.street.max":       "Straße darf nicht länger als 100 Buchstaben lang sein",
	"property.zip.min":          "PLZ muss mind. 5 Zeichen haben",
	"property.zip.max":          "PLZ darf nicht länger als 10 Zeichen sein",
	"property.city.required":    "Stadt ist erforderlich",
	"property.city.max":         "Stadt darf nicht länger als 100 Buchstaben lang sein",
	"property.totalArea.gt":     "Gesamtfläche muss größer als 0 sein",
	"property.totalArea.lte":    "Gesamtflächen größer als 1 Million werden noch nicht unterstützt",
	"property.totalUnits.gte":   "Anzahl Wohneinheiten muss größer als 0 sein",
	"property.totalUnits.lte":   "Mehr als 1000 Wohneinheiten werden noch nicht unterstützt",
	"property.totalPersons.gte": "Gesamtpersonenanzahl muss 0 oder größer sein",
	"property.totalPersons.lte": "Mehr als 1000 werden nicht unterstützt",

	"tenant.name.required":   "Name ist erforderlich",
	"tenant.name.max":        "Name darf nicht länger als 100 Zeichen lang sein",
	"tenant.currentArea.gt":  "Wohnfläche muss größer als 0 sein",
	"tenant.currentArea.lte": "Wohnflächen größer als 1 Million werden noch nicht unterstützt",
	"tenant.persons.gte":     "Personenanzahl muss größer als 0 sein",
	"tenant.persons.lte":     "Personenanzahl größer als zehntausend wird noch nicht unterstützt",
	"tenant.prepayments.gte": "Vorauszahlungen dürfen nicht negativ sein",
	"tenant.prepayments.lte": "Vorauszahlungen größer als 1 Million werden noch nicht unterstützt",

	"costItem.id.required":               "ID ist erforderlich",
	"costItem.id.uuid":                   "Ungültige ID",
	"costItem.name.required":             "Bezeichnung ist erforderlich",
	"costItem.name.max":                  "Bezeichnung zu lang",
	"costItem.amount.gte":                "Betrag muss größer als 0 sein",
	"costItem.amount.lte":                "Beträge größer als 1 Million werden noch nicht unterstützt",
	"costItem.distributionType.required": "Bitte einen Verteilerschlüssel wählen",
	"costItem.distributionType.oneof":    "Bitte einen Verteilerschlüssel wählen",
}

// message returns the form text for a failed rule, falling back to a
// generic text built from the rule and its parameter.
func message(entity string, fe validator.FieldError) string {
	if msg, ok := messages[entity+"."+fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return "Pflichtfeld"
	case "min":
		return fmt.Sprintf("Mindestens %s Zeichen", fe.Param())
	case "max":
		return fmt.Sprintf("Höchstens %s Zeichen", fe.Param())
	case "gt":
		return fmt.Sprintf("Wert muss größer als %s sein", fe.Param())
	case "gte":
		return fmt.Sprintf("Wert muss mindestens %s sein", fe.Param())
	case "lt":
		return fmt.Sprintf("Wert muss kleiner als %s sein", fe.Param())
	case "lte":
		return fmt.Sprintf("Wert darf höchstens %s sein", fe.Param())
	case "email":
		return "Ungültige E-Mail"
	case "oneof":
		return fmt.Sprintf("Erlaubte Werte: %s", fe.Param())
	default:
		return "Ungültiger Wert"
	}
}
