package verification

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldStatus is the per-field verification state
type FieldStatus string

const (
	StatusNotStarted FieldStatus = "not_started"
	StatusPending    FieldStatus = "pending"
	StatusVerified   FieldStatus = "verified"
	StatusFailed     FieldStatus = "failed"
)

// Normalize maps the zero value (field never touched) to not_started
func (s FieldStatus) Normalize() FieldStatus {
	if s == "" {
		return StatusNotStarted
	}
	return s
}

// fieldTransitions defines the per-field state machine. A new verification
// attempt re-enters pending from any state; only pending can settle.
var fieldTransitions = map[FieldStatus][]FieldStatus{
	StatusNotStarted: {StatusPending},
	StatusPending:    {StatusVerified, StatusFailed},
	StatusVerified:   {StatusPending, StatusFailed},
	StatusFailed:     {StatusPending, StatusVerified},
}

// CanTransition checks whether a field status transition is allowed
func (s FieldStatus) CanTransition(to FieldStatus) bool {
	for _, allowed := range fieldTransitions[s.Normalize()] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Field types
const (
	FieldGST  = "gst"
	FieldPAN  = "pan"
	FieldCIN  = "cin"
	FieldBank = "bank"
)

// Fields lists the identifier fields that count toward the overall percentage
var Fields = []string{FieldGST, FieldPAN, FieldCIN, FieldBank}

// Status holds the per-field statuses and the derived overall percentage
// for one company. Overall is never taken from a client; it is recomputed
// from the four field statuses after every transition.
type Status struct {
	GST     FieldStatus `bson:"gst,omitempty" json:"gst"`
	PAN     FieldStatus `bson:"pan,omitempty" json:"pan"`
	CIN     FieldStatus `bson:"cin,omitempty" json:"cin"`
	Bank    FieldStatus `bson:"bank,omitempty" json:"bank"`
	Overall int         `bson:"overall" json:"overall"`
}

// Field returns the status of a named field
func (s Status) Field(field string) FieldStatus {
	switch field {
	case FieldGST:
		return s.GST.Normalize()
	case FieldPAN:
		return s.PAN.Normalize()
	case FieldCIN:
		return s.CIN.Normalize()
	case FieldBank:
		return s.Bank.Normalize()
	}
	return StatusNotStarted
}

// OverallPercent derives the completion percentage from the four field
// statuses. Pure: only verified fields count, result is round(100*n/4).
func OverallPercent(s Status) int {
	verified := 0
	for _, field := range Fields {
		if s.Field(field) == StatusVerified {
			verified++
		}
	}
	return int(math.Round(100 * float64(verified) / float64(len(Fields))))
}

// Result is the outcome of one verification attempt. Exactly one of Data
// and Error is set on a terminal result; Success implies no Error.
type Result struct {
	Success    bool       `json:"success"`
	Data       *FieldData `json:"data,omitempty"`
	Error      string     `json:"error,omitempty"`
	Confidence int        `json:"confidence,omitempty"`
}

// FieldData is the structured payload returned by a successful lookup
type FieldData struct {
	LegalName  string    `bson:"legalName,omitempty" json:"legalName,omitempty"`
	Status     string    `bson:"status,omitempty" json:"status,omitempty"`
	BankName   string    `bson:"bankName,omitempty" json:"bankName,omitempty"`
	Branch     string    `bson:"branch,omitempty" json:"branch,omitempty"`
	VerifiedAt time.Time `bson:"verifiedAt" json:"verifiedAt"`
}

// Company is the verification view of a user document. Auth-owned fields
// on the same document are not decoded here.
type Company struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	CompanyName string                `bson:"companyName" json:"companyName"`
	Email       string                `bson:"email" json:"email"`
	UserType    string                `bson:"userType" json:"userType"`
	Industry    string                `bson:"industry,omitempty" json:"industry,omitempty"`
	CompanySize string                `bson:"companySize,omitempty" json:"companySize,omitempty"`
	GSTNumber   string                `bson:"gstNumber,omitempty" json:"gstNumber,omitempty"`
	PANNumber   string                `bson:"panNumber,omitempty" json:"panNumber,omitempty"`
	CINNumber   string                `bson:"cinNumber,omitempty" json:"cinNumber,omitempty"`
	BankAccount string                `bson:"bankNumber,omitempty" json:"bankAccount,omitempty"`
	BankIFSC    string                `bson:"bankIFSC,omitempty" json:"bankIFSC,omitempty"`
	Status      Status                `bson:"verificationStatus,omitempty" json:"verificationStatus"`
	Data        map[string]*FieldData `bson:"verificationData,omitempty" json:"verificationData,omitempty"`
	Errors      map[string]string     `bson:"verificationErrors,omitempty" json:"verificationErrors,omitempty"`
	CreatedAt   time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// Compliance levels derived from the overall percentage
const (
	ComplianceFull        = "fully_verified"
	ComplianceSubstantial = "substantially_verified"
	CompliancePartial     = "partially_verified"
	ComplianceMinimal     = "minimally_verified"
	ComplianceNone        = "unverified"
)

// ComplianceLevel maps an overall percentage to a compliance label
func ComplianceLevel(overall int) string {
	switch {
	case overall >= 100:
		return ComplianceFull
	case overall >= 75:
		return ComplianceSubstantial
	case overall >= 50:
		return CompliancePartial
	case overall > 0:
		return ComplianceMinimal
	default:
		return ComplianceNone
	}
}

// Requests

type VerifyRequest struct {
	Type  string `json:"type" binding:"required,oneof=gst pan cin bank"`
	Value string `json:"value" binding:"required"`
	IFSC  string `json:"ifsc"`
}

type BatchVerifyRequest struct {
	Verifications []VerifyRequest `json:"verifications" binding:"required,min=1,dive"`
}

type AdminReviewRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	Field     string `json:"field" binding:"required,oneof=gst pan cin bank"`
	Action    string `json:"action" binding:"required,oneof=approve reject"`
}

// AuditEntry records an admin verification override
type AuditEntry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuditID        string             `bson:"auditId" json:"auditId"`
	AdminID        string             `bson:"adminId" json:"adminId"`
	AdminEmail     string             `bson:"adminEmail" json:"adminEmail"`
	Action         string             `bson:"action" json:"action"`
	CompanyID      string             `bson:"targetCompanyId" json:"targetCompanyId"`
	CompanyName    string             `bson:"targetCompanyName" json:"targetCompanyName"`
	Field          string             `bson:"field" json:"field"`
	PreviousStatus FieldStatus        `bson:"previousStatus" json:"previousStatus"`
	NewStatus      FieldStatus        `bson:"newStatus" json:"newStatus"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// Report is the full per-company verification report
type Report struct {
	Company    ReportCompany    `json:"company"`
	Fields     map[string]ReportField `json:"fields"`
	Compliance ReportCompliance `json:"compliance"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

type ReportCompany struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	UserType    string `json:"userType"`
	Industry    string `json:"industry,omitempty"`
	CompanySize string `json:"companySize,omitempty"`
}

type ReportField struct {
	Status     FieldStatus `json:"status"`
	Number     string      `json:"number,omitempty"`
	VerifiedAt *time.Time  `json:"verifiedAt,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type ReportCompliance struct {
	Level          string `json:"level"`
	Score          int    `json:"score"`
	VerifiedFields int    `json:"verifiedFields"`
	TotalFields    int    `json:"totalFields"`
	PendingFields  int    `json:"pendingFields"`
	FailedFields   int    `json:"failedFields"`
}
