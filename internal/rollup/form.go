package rollup

import "buildcost/internal/core"

const (
	DefaultRetainagePercentage              core.Percent = 10
	DefaultStoredMaterialRetainagePercentage core.Percent = 10
)

// PaymentApplicationForm is the editable state behind a payment
// application: header details plus the entered amounts.
type PaymentApplicationForm struct {
	ProjectID                         string       `json:"projectId"`
	ApplicationNo                     int          `json:"applicationNo"`
	PeriodTo                          core.Date    `json:"periodTo"`
	ArchitectName                     string       `json:"architectName,omitempty"`
	ContractDate                      core.Date    `json:"contractDate"`
	RetainagePercentage               core.Percent `json:"retainagePercentage"`
	StoredMaterialRetainagePercentage core.Percent `json:"storedMaterialRetainagePercentage"`
	TotalCompletedAndStored           core.Money   `json:"totalCompletedAndStored"`
	PreviousCertificates              core.Money   `json:"previousCertificates"`
}

// NewPaymentApplicationForm returns an empty form with default retainage.
func NewPaymentApplicationForm() PaymentApplicationForm {
	return PaymentApplicationForm{
		ApplicationNo:                     1,
		RetainagePercentage:               DefaultRetainagePercentage,
		StoredMaterialRetainagePercentage: DefaultStoredMaterialRetainagePercentage,
	}
}

// SelectProject switches the form to another project. Only the
// completed-and-stored amount and previous certificates are reset; header
// fields and percentages carry over.
func (f *PaymentApplicationForm) SelectProject(projectID string) {
	if f.ProjectID == projectID {
		return
	}
	f.ProjectID = projectID
	f.TotalCompletedAndStored = core.Money{}
	f.PreviousCertificates = core.Money{}
}

// Inputs combines the form with the project's contract sum to date.
func (f PaymentApplicationForm) Inputs(totals ProjectTotals) PaymentInputs {
	return PaymentInputs{
		ContractSumToDate:                 totals.ContractSumToDate,
		TotalCompletedAndStored:           f.TotalCompletedAndStored,
		RetainagePercentage:               f.RetainagePercentage,
		StoredMaterialRetainagePercentage: f.StoredMaterialRetainagePercentage,
		PreviousCertificates:              f.PreviousCertificates,
	}
}
