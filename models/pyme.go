package models

import "time"

// Employee is a worker on a pyme's payroll.
type Employee struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Position     string    `bson:"position" json:"position"`
	DailySalary  float64   `bson:"dailySalary" json:"dailySalary"`
	StartDate    time.Time `bson:"startDate" json:"startDate"`
	ContractType string    `bson:"contractType" json:"contractType"`
	RFC          string    `bson:"rfc,omitempty" json:"rfc,omitempty"`
	IsRenewed    bool      `bson:"isRenewed" json:"isRenewed"`
	Active       bool      `bson:"active" json:"active"`
}

// EmployeeInput is the payload for registering an employee.
type EmployeeInput struct {
	Name         string    `json:"name"`
	Position     string    `json:"position"`
	DailySalary  float64   `json:"dailySalary"`
	StartDate    time.Time `json:"startDate"`
	ContractType string    `json:"contractType"`
	RFC          string    `json:"rfc"`
}

const (
	ContractIndefinite = "indefinite"
	ContractTrial      = "trial"
)

// PymeProfile holds the compliance data of a small business.
type PymeProfile struct {
	ID                     string         `bson:"id" json:"id"`
	UserID                 string         `bson:"userId" json:"userId"`
	RFC                    string         `bson:"rfc" json:"rfc"`
	RazonSocial            string         `bson:"razonSocial" json:"razonSocial"`
	Industry               string         `bson:"industry" json:"industry"`
	State                  string         `bson:"state" json:"state"`
	HasInternalRegulations bool           `bson:"hasInternalRegulations" json:"hasInternalRegulations"`
	RiskScore              int            `bson:"riskScore" json:"riskScore"`
	Employees              []Employee     `bson:"employees" json:"employees"`
	Documents              []PymeDocument `bson:"documents,omitempty" json:"-"`
	CreatedAt              time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// PymeDocument is a labor document (contract, regulation, policy) the pyme keeps on file.
type PymeDocument struct {
	ID          string    `bson:"id" json:"id"`
	Type        string    `bson:"type" json:"type"`
	Name        string    `bson:"name" json:"name"`
	Path        string    `bson:"path" json:"-"`
	ContentType string    `bson:"contentType,omitempty" json:"contentType,omitempty"`
	FileSize    int64     `bson:"fileSize" json:"fileSize"`
	URL         string    `bson:"-" json:"url,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// PymeDocumentInput registers an object already uploaded through a signed URL.
type PymeDocumentInput struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

// ContractIssue is one finding of the contract review.
type ContractIssue struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

// ContractAnalysis is the educational contract review offered on the basic plan.
type ContractAnalysis struct {
	RiskLevel      string          `json:"riskLevel"`
	Issues         []ContractIssue `json:"issues"`
	Recommendation string          `json:"recommendation"`
}

// PymeProfileUpdate holds editable pyme fields.
type PymeProfileUpdate struct {
	RFC                    *string `json:"rfc"`
	RazonSocial            *string `json:"razonSocial"`
	Industry               *string `json:"industry"`
	State                  *string `json:"state"`
	HasInternalRegulations *bool   `json:"hasInternalRegulations"`
}

// LiquidationInput describes a termination to price.
type LiquidationInput struct {
	DailySalary float64   `json:"dailySalary"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	IsLayoff    bool      `json:"isLayoff"`
	// Vacation days already taken in the current service year.
	VacationDaysTaken float64 `json:"vacationDaysTaken"`
}

// LiquidationResult breaks down what the employer owes.
type LiquidationResult struct {
	YearsWorked        int     `json:"yearsWorked"`
	TotalDays          int     `json:"totalDays"`
	SeniorityYears     float64 `json:"seniorityYears"`
	VacationDaysEarned int     `json:"vacationDaysEarned"`
	Aguinaldo          float64 `json:"aguinaldo"`
	Vacations          float64 `json:"vacations"`
	VacationPremium    float64 `json:"vacationPremium"`
	SeniorityPremium   float64 `json:"seniorityPremium"`
	Indemnity          float64 `json:"indemnity"`
	Total              float64 `json:"total"`
}

// ComplianceScore is the pyme's labor risk traffic light.
type ComplianceScore struct {
	Score  int      `json:"score"`
	Status string   `json:"status"`
	Label  string   `json:"label"`
	Issues []string `json:"issues"`
}

// LiabilityReport is the total exposure if every active employee were laid off today.
type LiabilityReport struct {
	GeneratedAt   time.Time           `json:"generatedAt"`
	Total         float64             `json:"totalLiability"`
	EmployeeCount int                 `json:"employeeCount"`
	Items         []EmployeeLiability `json:"breakdown"`
}

// EmployeeLiability is one line of a LiabilityReport.
type EmployeeLiability struct {
	EmployeeID  string            `json:"employeeId"`
	Name        string            `json:"name"`
	Position    string            `json:"position"`
	DailySalary float64           `json:"dailySalary"`
	Years       int               `json:"years"`
	Liability   float64           `json:"liability"`
	Breakdown   LiquidationResult `json:"detail"`
}

// ActRequest asks for an administrative act about an incident with an employee.
type ActRequest struct {
	EmployeeID string `json:"employeeId"`
	Incident   string `json:"incident"`
	Date       string `json:"date"`
}

// AdministrativeAct is the drafted act in markdown.
type AdministrativeAct struct {
	Content string `json:"content"`
	Draft   bool   `json:"draft"`
}
