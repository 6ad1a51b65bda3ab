package model

// Severity represents how damaging a piece of exposed personal data is.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates data with no direct harm potential.
	// Examples: usernames, public social handles.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor data that mostly enables correlation.
	// Examples: city/state, age range, relatives list.
	SeverityLow

	// SeverityMedium indicates data usable for targeted contact or fraud.
	// Examples: email addresses, phone numbers.
	SeverityMedium

	// SeverityHigh indicates data enabling impersonation or physical risk.
	// Examples: full street address, date of birth, breach credentials.
	SeverityHigh

	// SeverityCritical indicates data enabling identity theft outright.
	// Examples: SSN fragments, financial account data on dark-web markets.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a stored severity string back to a Severity.
// Unknown strings map to SeverityInfo rather than failing, so a schema
// addition never breaks reads of old rows.
func ParseSeverity(s string) Severity {
	switch s {
	case "LOW":
		return SeverityLow
	case "MEDIUM":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// DataType is the category of personal data found at a source.
type DataType string

const (
	// DataTypeProfile is a people-search profile aggregating name,
	// addresses, relatives, and contact data.
	DataTypeProfile DataType = "profile"

	// DataTypeEmail is a listed or breached email address.
	DataTypeEmail DataType = "email"

	// DataTypePhone is a listed phone number.
	DataTypePhone DataType = "phone"

	// DataTypeAddress is a listed physical address.
	DataTypeAddress DataType = "address"

	// DataTypeCredentials is a breached credential pair.
	DataTypeCredentials DataType = "credentials"

	// DataTypeSSN is a social security number or fragment.
	DataTypeSSN DataType = "ssn"

	// DataTypeDOB is a listed date of birth.
	DataTypeDOB DataType = "dob"

	// DataTypeUsername is a listed username or handle.
	DataTypeUsername DataType = "username"
)

// DataTypeInfo carries the assessment metadata for one data type: its
// severity, what its exposure means for the user, and what we recommend.
type DataTypeInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// dataTypeInfoMapping maps data types to their assessment metadata.
// This centralized mapping keeps severity assignments consistent between
// scan-time hit scoring and report rendering.
//
// Design decision: We use a map rather than embedding severity in each data
// type because it allows updating risk assessments without touching type
// definitions, and it gives reports a single source of truth.
var dataTypeInfoMapping = map[DataType]DataTypeInfo{
	DataTypeSSN: {
		Severity:       SeverityCritical,
		Impact:         "A social security number enables identity theft, credit fraud, and account takeover.",
		Recommendation: "Request immediate removal, place a credit freeze, and monitor credit reports.",
	},
	DataTypeCredentials: {
		Severity:       SeverityHigh,
		Impact:         "Breached credentials allow direct account takeover, especially where passwords are reused.",
		Recommendation: "Rotate the affected password everywhere it was used and enable multi-factor authentication.",
	},
	DataTypeDOB: {
		Severity:       SeverityHigh,
		Impact:         "A date of birth combined with name and address satisfies many identity verification checks.",
		Recommendation: "Request removal from the listing source.",
	},
	DataTypeAddress: {
		Severity:       SeverityHigh,
		Impact:         "A current street address exposes the user to physical risk and targeted mail fraud.",
		Recommendation: "Request removal and consider address confidentiality programs where eligible.",
	},
	DataTypePhone: {
		Severity:       SeverityMedium,
		Impact:         "A listed phone number enables smishing, SIM-swap targeting, and spam calls.",
		Recommendation: "Request removal from the listing source.",
	},
	DataTypeEmail: {
		Severity:       SeverityMedium,
		Impact:         "A listed email address enables phishing and credential-stuffing targeting.",
		Recommendation: "Request removal and watch for phishing attempts referencing this source.",
	},
	DataTypeProfile: {
		Severity:       SeverityMedium,
		Impact:         "An aggregated profile links name, locations, relatives, and contact data in one place.",
		Recommendation: "Submit an opt-out to the broker; parent-level removal may cover subsidiary sites.",
	},
	DataTypeUsername: {
		Severity:       SeverityInfo,
		Impact:         "A listed username allows cross-service correlation of accounts.",
		Recommendation: "No removal action required; review linked accounts for unwanted exposure.",
	},
}

// InfoForDataType returns the assessment metadata for a data type.
// Unknown types get a generic medium-severity assessment.
func InfoForDataType(dt DataType) DataTypeInfo {
	if info, ok := dataTypeInfoMapping[dt]; ok {
		return info
	}
	return DataTypeInfo{
		Severity:       SeverityMedium,
		Impact:         "Personal data is listed at this source.",
		Recommendation: "Request removal from the listing source.",
	}
}
