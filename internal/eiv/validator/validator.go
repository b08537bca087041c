// Package validator normalizes and rejects inbound EIV request fields.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "eiv-admissions/internal/common/errors"
	"eiv-admissions/internal/common/validation"
	"eiv-admissions/internal/models"
)

// Funding types accepted by the FundingType field.
const (
	FundingSelfFunded  = "Self funded"
	FundingFullyFunded = "Fully Funded"
)

// multiplanFlag is kept apart from the other boolean flags so the multiplan
// rule can change independently.
func multiplanFlag() validation.Rule {
	return validation.Flag(false)
}

// requestFields declares every inbound field with its rule and default policy.
var requestFields = []validation.Field{
	{Name: "ClientTrackingID", Rule: validation.OptionalText()},
	{Name: "ClientName", Rule: validation.PersonName()},
	{Name: "VOBID", Rule: validation.OptionalText()},
	{Name: "SCA", Rule: validation.Flag(false)},
	{Name: "OONBenefits", Rule: validation.Flag(false)},
	{Name: "Subscriber", Rule: validation.PersonName()},
	{Name: "Payor", Rule: validation.OptionalText()},
	{Name: "GroupID", Rule: validation.OptionalText()},
	{Name: "PolicyID", Rule: validation.OptionalText()},
	{Name: "FundingType", Rule: validation.OneOf(FundingSelfFunded, FundingSelfFunded, FundingFullyFunded)},
	{Name: "PolicyType", Rule: validation.OptionalText()},
	{Name: "Copay", Rule: validation.Percent()},
	{Name: "CoinsuranceOON", Rule: validation.Percent()},
	{Name: "Deductible", Rule: validation.NonNegative()},
	{Name: "OutOfBucket", Rule: validation.NonNegative()},
	{Name: "State", Rule: validation.OptionalText()},
	{Name: "Multiplan", Rule: multiplanFlag()},
}

// FieldNames lists the declared request fields in evaluation order.
func FieldNames() []string {
	names := make([]string, len(requestFields))
	for i, f := range requestFields {
		names[i] = f.Name
	}
	return names
}

// Validate applies the field table to a decoded request object.
func Validate(raw map[string]interface{}) (*models.Request, error) {
	v, err := validation.Apply(raw, requestFields)
	if err != nil {
		return nil, err
	}

	return &models.Request{
		ClientTrackingID: optString(v["ClientTrackingID"]),
		ClientName:       v["ClientName"].(string),
		VOBID:            optString(v["VOBID"]),
		SCA:              v["SCA"].(bool),
		OONBenefits:      v["OONBenefits"].(bool),
		Subscriber:       v["Subscriber"].(string),
		Payor:            optString(v["Payor"]),
		GroupID:          optString(v["GroupID"]),
		PolicyID:         optString(v["PolicyID"]),
		FundingType:      v["FundingType"].(string),
		PolicyType:       optString(v["PolicyType"]),
		Copay:            optFloat(v["Copay"]),
		CoinsuranceOON:   optFloat(v["CoinsuranceOON"]),
		Deductible:       optFloat(v["Deductible"]),
		OutOfBucket:      optFloat(v["OutOfBucket"]),
		State:            optString(v["State"]),
		Multiplan:        v["Multiplan"].(bool),
	}, nil
}

// DecodeBody extracts the request object from an inbound envelope. The body
// may be a JSON object or a JSON-encoded string holding one.
func DecodeBody(envelope map[string]interface{}) (map[string]interface{}, error) {
	body, ok := envelope["body"]
	if !ok {
		return nil, apperrors.NewMissingFieldError("body")
	}

	switch b := body.(type) {
	case map[string]interface{}:
		return b, nil
	case string:
		return DecodeObject([]byte(b))
	default:
		return nil, apperrors.NewMalformedRequestError(fmt.Errorf("body must be an object, got %T", body))
	}
}

// DecodeObject parses raw JSON into an object, keeping numbers as json.Number.
func DecodeObject(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, apperrors.NewMalformedRequestError(err)
	}
	if out == nil {
		return nil, apperrors.NewMalformedRequestError(fmt.Errorf("expected a JSON object"))
	}
	return out, nil
}

func optString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func optFloat(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
