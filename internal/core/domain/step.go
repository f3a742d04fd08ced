package domain

// Step identifies one stage of the portal's invoice wizard. The flow is
// strictly forward: a step either advances to the next or terminates the
// invoice as failed. No step is ever re-entered.
type Step string

const (
	// StepNavigatingToForm opens the invoice generator for the issuer.
	StepNavigatingToForm Step = "navigating_to_form"

	// StepSelectingType selects the point of sale and invoice type.
	StepSelectingType Step = "selecting_type"

	// StepFillingIssuanceData fills the issuance date, concept and
	// billing period.
	StepFillingIssuanceData Step = "filling_issuance_data"

	// StepFillingRecipientData fills the recipient IVA condition, CUIT
	// and payment method.
	StepFillingRecipientData Step = "filling_recipient_data"

	// StepFillingContentData fills the invoice line items.
	StepFillingContentData Step = "filling_content_data"

	// StepConfirming confirms generation, captures the portal invoice
	// identifier and retrieves the document.
	StepConfirming Step = "confirming"
)

// Steps returns the wizard steps in portal order.
func Steps() []Step {
	return []Step{
		StepNavigatingToForm,
		StepSelectingType,
		StepFillingIssuanceData,
		StepFillingRecipientData,
		StepFillingContentData,
		StepConfirming,
	}
}

// IsValid returns true if the step is part of the wizard.
func (s Step) IsValid() bool {
	switch s {
	case StepNavigatingToForm, StepSelectingType, StepFillingIssuanceData,
		StepFillingRecipientData, StepFillingContentData, StepConfirming:
		return true
	}
	return false
}

// String returns the string representation of the step.
func (s Step) String() string {
	return string(s)
}

// Description returns a human-readable explanation of the step.
func (s Step) Description() string {
	switch s {
	case StepNavigatingToForm:
		return "Navigating to the invoice generator"
	case StepSelectingType:
		return "Selecting point of sale and invoice type"
	case StepFillingIssuanceData:
		return "Filling issuance data"
	case StepFillingRecipientData:
		return "Filling recipient data"
	case StepFillingContentData:
		return "Filling invoice content"
	case StepConfirming:
		return "Confirming invoice generation"
	default:
		return "Unknown step"
	}
}
