package models

// Request is a validated EIV prediction request. Pointer fields are nil when
// the caller sent null.
type Request struct {
	ClientTrackingID *string  `json:"ClientTrackingID"`
	ClientName       string   `json:"ClientName"`
	VOBID            *string  `json:"VOBID"`
	SCA              bool     `json:"SCA"`
	OONBenefits      bool     `json:"OONBenefits"`
	Subscriber       string   `json:"Subscriber"`
	Payor            *string  `json:"Payor"`
	GroupID          *string  `json:"GroupID"`
	PolicyID         *string  `json:"PolicyID"`
	FundingType      string   `json:"FundingType"`
	PolicyType       *string  `json:"PolicyType"`
	Copay            *float64 `json:"Copay"`
	CoinsuranceOON   *float64 `json:"CoinsuranceOON"`
	Deductible       *float64 `json:"Deductible"`
	OutOfBucket      *float64 `json:"OutOfBucket"`
	State            *string  `json:"State"`
	Multiplan        bool     `json:"Multiplan"`
}

// VOBAmount is deductible plus out-of-pocket with nulls counted as zero.
func (r *Request) VOBAmount() float64 {
	var total float64
	if r.Deductible != nil {
		total += *r.Deductible
	}
	if r.OutOfBucket != nil {
		total += *r.OutOfBucket
	}
	return total
}

// YesNo renders a flag the way the reference dataset stores it.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
