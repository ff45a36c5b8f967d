// Package hwf implements the Help with Fees remission workflow for general
// application fees. Application and additional fees each have their own
// sub-record; an event only ever touches the sub-record of the active fee type.
package hwf

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
)

// FeeType selects which fee the HWF action applies to.
type FeeType string

const (
	FeeTypeApplication FeeType = "APPLICATION"
	FeeTypeAdditional  FeeType = "ADDITIONAL"
)

// CaseEvent is the last HWF action recorded against a fee type.
type CaseEvent string

const (
	FullRemission     CaseEvent = "FULL_REMISSION_HWF_GA"
	PartialRemission  CaseEvent = "PARTIAL_REMISSION_HWF_GA"
	NoRemission       CaseEvent = "NO_REMISSION_HWF_GA"
	InvalidReference  CaseEvent = "INVALID_HWF_REFERENCE_GA"
	MoreInformation   CaseEvent = "MORE_INFORMATION_HWF_GA"
	UpdateReference   CaseEvent = "UPDATE_HELP_WITH_FEE_NUMBER_GA"
	FeePaymentOutcome CaseEvent = "FEE_PAYMENT_OUTCOME_GA"
)

// Details is the HWF state of one fee type. Outstanding is held in pounds and
// remission in pence, matching the case record.
type Details struct {
	OutstandingFee    decimal.Decimal `json:"outstandingFeeInPounds"`
	RemissionPence    int64           `json:"remissionAmount"`
	CaseEvent         CaseEvent       `json:"hwfCaseEvent,omitempty"`
	ReferenceNumber   string          `json:"hwfReferenceNumber,omitempty"`
	NoRemissionReason string          `json:"noRemissionDetailsSummary,omitempty"`
}

func (d *Details) clone() *Details {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// MoreInformationRequest lists the documents the applicant must supply.
type MoreInformationRequest struct {
	DocumentsDate time.Time `json:"documentsDate"`
	Documents     []string  `json:"documents"`
	// Bilingual asks for the Welsh variant of the notification as well.
	Bilingual bool   `json:"bilingual,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// PaymentStatus is the payment collaborator's verdict.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentError records a failed payment for later display.
type PaymentError struct {
	Status       PaymentStatus `json:"status"`
	ErrorCode    string        `json:"errorCode,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// Record is the HWF part of a general application.
type Record struct {
	ActiveFeeType   FeeType                      `json:"hwfFeeType"`
	ReferenceNumber string                       `json:"helpWithFeesReferenceNumber,omitempty"`
	Types           []generalapp.ApplicationType `json:"types"`
	ApplicationFee  *generalapp.Fee              `json:"applicationFee,omitempty"`
	AdditionalFee   *generalapp.Fee              `json:"additionalFee,omitempty"`
	Application     *Details                     `json:"gaHwfDetails,omitempty"`
	Additional      *Details                     `json:"additionalHwfDetails,omitempty"`
	MoreInformation *MoreInformationRequest      `json:"helpWithFeesMoreInformation,omitempty"`
	PaymentError    *PaymentError                `json:"paymentError,omitempty"`
	BusinessProcess generalapp.BusinessProcess   `json:"businessProcess"`
}

// ActiveDetails returns the sub-record for the active fee type.
func (r Record) ActiveDetails() *Details {
	switch r.ActiveFeeType {
	case FeeTypeApplication:
		return r.Application
	case FeeTypeAdditional:
		return r.Additional
	}
	return nil
}

// ActiveFee returns the fee for the active fee type.
func (r Record) ActiveFee() *generalapp.Fee {
	switch r.ActiveFeeType {
	case FeeTypeApplication:
		return r.ApplicationFee
	case FeeTypeAdditional:
		return r.AdditionalFee
	}
	return nil
}

func (r Record) clone() Record {
	c := r
	c.Types = append([]generalapp.ApplicationType(nil), r.Types...)
	c.Application = r.Application.clone()
	c.Additional = r.Additional.clone()
	if r.MoreInformation != nil {
		mi := *r.MoreInformation
		mi.Documents = append([]string(nil), r.MoreInformation.Documents...)
		c.MoreInformation = &mi
	}
	if r.PaymentError != nil {
		pe := *r.PaymentError
		c.PaymentError = &pe
	}
	return c
}

// withActive returns a copy of r whose active sub-record exists, and that
// sub-record for editing.
func (r Record) withActive() (Record, *Details) {
	c := r.clone()
	switch c.ActiveFeeType {
	case FeeTypeApplication:
		if c.Application == nil {
			c.Application = &Details{}
		}
		return c, c.Application
	default:
		if c.Additional == nil {
			c.Additional = &Details{}
		}
		return c, c.Additional
	}
}

//Personal.AI order the ending
