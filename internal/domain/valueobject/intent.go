package valueobject

// Intent is the tag a customer utterance resolves to within the active
// conversation stage. Each stage classifies against its own closed set of
// tags; an utterance matching none of them resolves to the stage's general
// fallback intent.
type Intent string

// Welcome stage intents.
const (
	IntentLoanInquiry Intent = "LOAN_INQUIRY"
	IntentGreeting    Intent = "GREETING"
)

// Identification stage intents.
const (
	IntentPhoneShared     Intent = "PHONE_SHARED"
	IntentIdentityUnknown Intent = "IDENTITY_UNKNOWN"
)

// Sales stage intents.
const (
	IntentAmountInquiry      Intent = "AMOUNT_INQUIRY"
	IntentRateInquiry        Intent = "RATE_INQUIRY"
	IntentProductComparison  Intent = "PRODUCT_COMPARISON"
	IntentEligibilityInquiry Intent = "ELIGIBILITY_INQUIRY"
	IntentApplicationConsent Intent = "APPLICATION_CONSENT"
	IntentApplicationDecline Intent = "APPLICATION_DECLINE"
	IntentGeneralSales       Intent = "GENERAL_SALES"
)

// Verification stage intents.
const (
	IntentIdentityConfirmation Intent = "IDENTITY_CONFIRMATION"
	IntentAddressConfirmation  Intent = "ADDRESS_CONFIRMATION"
	IntentIncomeShared         Intent = "INCOME_SHARED"
	IntentDocumentUpload       Intent = "DOCUMENT_UPLOAD"
	IntentVerificationPurpose  Intent = "VERIFICATION_PURPOSE"
	IntentDataSafetyConcern    Intent = "DATA_SAFETY_CONCERN"
	IntentGeneralVerification  Intent = "GENERAL_VERIFICATION"
)

// Underwriting stage intents.
const (
	IntentStatusCheck         Intent = "STATUS_CHECK"
	IntentOfferAcceptance     Intent = "OFFER_ACCEPTANCE"
	IntentOfferModification   Intent = "OFFER_MODIFICATION"
	IntentCreditScoreInquiry  Intent = "CREDIT_SCORE_INQUIRY"
	IntentGeneralUnderwriting Intent = "GENERAL_UNDERWRITING"
)

// Document stage intents.
const (
	IntentDownloadRequest      Intent = "DOWNLOAD_REQUEST"
	IntentEmailRequest         Intent = "EMAIL_REQUEST"
	IntentDisbursementInquiry  Intent = "DISBURSEMENT_INQUIRY"
	IntentDocumentDetails      Intent = "DOCUMENT_DETAILS"
	IntentGeneralDocumentation Intent = "GENERAL_DOCUMENTATION"
)

// Completed stage intents.
const (
	IntentNewLoan          Intent = "NEW_LOAN"
	IntentHelpRequest      Intent = "HELP_REQUEST"
	IntentGeneralCompleted Intent = "GENERAL_COMPLETED"
)
