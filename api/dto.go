/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the store and engine types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:  EmployeeDTO, EmployeeRequest
  Balance:   BalanceDTO, AnnualBalanceDTO, SickBalanceDTO
  Leave:     LeaveDTO, LeaveRequest, ViewLeaveDTO
  Files:     CertificateDTO
  Auth:      LoginRequest, LoginResponse, ChangePasswordRequest, MeDTO

ROUNDING:
  Day figures leave the engine as decimals and are rounded to 2 places
  here, at the edge. Nothing rounded is ever fed back into a calculation.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/leave-manager/generic"
	"github.com/warp/leave-manager/store/sqlite"
	"github.com/warp/leave-manager/timeoff"
)

const dayPlaces = 2

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO is an employee with headline balances.
type EmployeeDTO struct {
	ID                int64   `json:"id"`
	EmployeeID        string  `json:"employee_id"`
	Name              string  `json:"name"`
	Department        string  `json:"department,omitempty"`
	HireDate          string  `json:"hire_date"`
	Email             string  `json:"email,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	AnnualEntitlement float64 `json:"annual_entitlement"`
	AnnualBalance     float64 `json:"annual_balance"`
	SickEntitlement   float64 `json:"sick_entitlement"`
	SickBalance       float64 `json:"sick_balance"`
}

// EmployeeRequest creates or updates an employee. On update an omitted
// contact field keeps its stored value; an empty string clears it.
type EmployeeRequest struct {
	Name       string  `json:"name"`
	EmployeeID string  `json:"employee_id"`
	HireDate   string  `json:"hire_date"`
	Department *string `json:"department"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
}

func toEmployeeDTO(emp timeoff.Employee, b timeoff.EmployeeBalances) EmployeeDTO {
	return EmployeeDTO{
		ID:                int64(emp.ID),
		EmployeeID:        emp.Number,
		Name:              emp.Name,
		Department:        emp.Department,
		HireDate:          emp.HireDate.String(),
		Email:             emp.Email,
		Phone:             emp.Phone,
		AnnualEntitlement: b.Annual.Entitlement.Rounded(dayPlaces),
		AnnualBalance:     b.Annual.Balance.Rounded(dayPlaces),
		SickEntitlement:   b.Sick.Entitlement.Rounded(dayPlaces),
		SickBalance:       b.Sick.Balance.Rounded(dayPlaces),
	}
}

// =============================================================================
// BALANCES
// =============================================================================

// BalanceDTO is the detailed breakdown for one employee.
type BalanceDTO struct {
	EmployeeID int64            `json:"employee_id"`
	AsOf       string           `json:"as_of"`
	Annual     AnnualBalanceDTO `json:"annual"`
	Sick       SickBalanceDTO   `json:"sick"`
}

type AnnualBalanceDTO struct {
	Entitlement    float64  `json:"entitlement"`
	Balance        float64  `json:"balance"`
	Used           float64  `json:"used"`
	MonthsEmployed int      `json:"months_employed"`
	Rate           string   `json:"rate,omitempty"`
	MonthlyRate    float64  `json:"monthly_rate"`
	Cap            *float64 `json:"cap,omitempty"`
	Capped         bool     `json:"capped"`
}

type SickBalanceDTO struct {
	Entitlement    float64 `json:"entitlement"`
	Balance        float64 `json:"balance"`
	Phase          string  `json:"phase"`
	DaysEmployed   int     `json:"days_employed"`
	CompleteCycles int     `json:"complete_cycles"`
	CycleStart     string  `json:"cycle_start,omitempty"`
	CycleEnd       string  `json:"cycle_end,omitempty"`
	ProbationUsed  float64 `json:"probation_used"`
	UsedInCycle    float64 `json:"used_in_cycle"`
	Used           float64 `json:"used"`
}

func toBalanceDTO(id generic.EntityID, b timeoff.EmployeeBalances, limit *generic.Amount) BalanceDTO {
	dto := BalanceDTO{
		EmployeeID: int64(id),
		AsOf:       b.AsOf.String(),
		Annual: AnnualBalanceDTO{
			Entitlement:    b.Annual.Entitlement.Rounded(dayPlaces),
			Balance:        b.Annual.Balance.Rounded(dayPlaces),
			Used:           b.Annual.Used.Rounded(dayPlaces),
			MonthsEmployed: b.Annual.MonthsEmployed,
			MonthlyRate:    b.Annual.Rate.PerMonth().Round(4).InexactFloat64(),
			Capped:         b.Annual.Capped,
		},
		Sick: SickBalanceDTO{
			Entitlement:    b.Sick.Entitlement.Rounded(dayPlaces),
			Balance:        b.Sick.Balance.Rounded(dayPlaces),
			Phase:          string(b.Sick.Phase),
			DaysEmployed:   b.Sick.DaysEmployed,
			CompleteCycles: b.Sick.CompleteCycles,
			ProbationUsed:  b.Sick.ProbationUsed.Rounded(dayPlaces),
			UsedInCycle:    b.Sick.UsedInCycle.Rounded(dayPlaces),
			Used:           b.Sick.Used.Rounded(dayPlaces),
		},
	}
	if !b.Annual.Rate.IsZero() {
		dto.Annual.Rate = b.Annual.Rate.String()
	}
	if limit != nil {
		c := limit.Rounded(dayPlaces)
		dto.Annual.Cap = &c
	}
	if !b.Sick.Cycle.Start.IsZero() {
		dto.Sick.CycleStart = b.Sick.Cycle.Start.String()
		dto.Sick.CycleEnd = b.Sick.Cycle.End.String()
	}
	return dto
}

// =============================================================================
// LEAVE
// =============================================================================

// LeaveDTO is a leave record joined with its employee.
type LeaveDTO struct {
	ID             int64   `json:"id"`
	Type           string  `json:"type"`
	EmployeeID     int64   `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	EmployeeNumber string  `json:"employee_number"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Reason         string  `json:"reason,omitempty"`
	DaysUsed       float64 `json:"days_used"`
	Status         string  `json:"status"`
	MedicalCert    string  `json:"medical_cert,omitempty"`
}

// LeaveRequest creates or updates a leave record. Status defaults to
// Approved. Certificates are attached only through the upload endpoint.
type LeaveRequest struct {
	EmployeeID int64   `json:"employee_id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Reason     string  `json:"reason"`
	DaysUsed   float64 `json:"days_used"`
	Status     string  `json:"status"`
}

// ViewLeaveDTO is every leave record, split by type.
type ViewLeaveDTO struct {
	Annual []LeaveDTO `json:"annual"`
	Sick   []LeaveDTO `json:"sick"`
}

func toLeaveDTO(row sqlite.LeaveRow) LeaveDTO {
	return LeaveDTO{
		ID:             int64(row.ID),
		Type:           string(row.Type),
		EmployeeID:     int64(row.EmployeeID),
		EmployeeName:   row.EmployeeName,
		EmployeeNumber: row.EmployeeNumber,
		StartDate:      row.Start.String(),
		EndDate:        row.End.String(),
		Reason:         row.Reason,
		DaysUsed:       row.DaysUsed.Rounded(dayPlaces),
		Status:         string(row.Status),
		MedicalCert:    row.MedicalCert,
	}
}

func toLeaveDTOs(rows []sqlite.LeaveRow) []LeaveDTO {
	dtos := make([]LeaveDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toLeaveDTO(row)
	}
	return dtos
}

// CertificateDTO describes a stored certificate.
type CertificateDTO struct {
	LeaveID     int64  `json:"leave_id"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username            string `json:"username"`
	Token               string `json:"token"`
	ExpiresAt           string `json:"expires_at"`
	ForcePasswordChange bool   `json:"force_password_change"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// MeDTO is the authenticated user.
type MeDTO struct {
	Username            string `json:"username"`
	ForcePasswordChange bool   `json:"force_password_change"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
