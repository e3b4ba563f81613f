package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	CostLabor    CostType = "labor"
	CostMaterial CostType = "material"
	CostBoth     CostType = "both"

	COSubmitted ChangeOrderStatus = "Submitted"
	COApproved  ChangeOrderStatus = "Approved"
	COExecuted  ChangeOrderStatus = "Executed"
	CORejected  ChangeOrderStatus = "Rejected"

	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"

	RFIOpen     RFIStatus = "Open"
	RFIAnswered RFIStatus = "Answered"
	RFIClosed   RFIStatus = "Closed"

	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"

	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

const maxTextLen = 200

type (
	CostType          string
	ChangeOrderStatus string
	ProjectStatus     string
	RFIStatus         string
	TaskStatus        string
	TaskPriority      string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Project struct {
		ID              string        `json:"id"`
		ProjectNumber   string        `json:"projectNumber"`
		Name            string        `json:"name"`
		OwnerName       string        `json:"ownerName"`
		Address         string        `json:"address,omitempty"`
		ArchitectName   string        `json:"architectName,omitempty"`
		ContractDate    Date          `json:"contractDate"`
		StartDate       Date          `json:"startDate"`
		EndDate         Date          `json:"endDate"`
		RevisedContract Money         `json:"revisedContract"`
		PercentComplete Percent       `json:"percentComplete"`
		Status          ProjectStatus `json:"status"`
	}

	// BudgetCategory is an entry of the flat master category list.
	// Budget items and expenses reference it by Name, not by ID.
	BudgetCategory struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	BudgetItem struct {
		ID               string   `json:"id"`
		ProjectID        string   `json:"projectId"`
		Category         string   `json:"category"`
		CostType         CostType `json:"costType"`
		Notes            string   `json:"notes,omitempty"`
		OriginalBudget   Money    `json:"originalBudget"`
		ApprovedCOBudget Money    `json:"approvedCOBudget"`
		CommittedCost    Money    `json:"committedCost"`
		ProjectedCost    Money    `json:"projectedCost"`
	}

	Expense struct {
		ID               string `json:"id"`
		ProjectID        string `json:"projectId"`
		Date             Date   `json:"date"`
		Category         string `json:"category"`
		VendorName       string `json:"vendorName,omitempty"`
		Description      string `json:"description"`
		Amount           Money  `json:"amount"`
		PaymentMethod    string `json:"paymentMethod"`
		PaymentReference string `json:"paymentReference,omitempty"`
		InvoiceNumber    string `json:"invoiceNumber,omitempty"`
	}

	// ChangeOrder carries a signed TotalRequest: positive adds to the
	// contract, negative deducts from it.
	ChangeOrder struct {
		ID           string            `json:"id"`
		ProjectID    string            `json:"projectId"`
		CONumber     string            `json:"coNumber"`
		Description  string            `json:"description"`
		TotalRequest Money             `json:"totalRequest"`
		Status       ChangeOrderStatus `json:"status"`
	}

	RFI struct {
		ID         string    `json:"id"`
		ProjectID  string    `json:"projectId"`
		RFINumber  string    `json:"rfiNumber"`
		Subject    string    `json:"subject"`
		Question   string    `json:"question"`
		Answer     string    `json:"answer,omitempty"`
		Status     RFIStatus `json:"status"`
		DueDate    Date      `json:"dueDate"`
		AssignedTo string    `json:"assignedTo,omitempty"`
	}

	Task struct {
		ID          string       `json:"id"`
		ProjectID   string       `json:"projectId"`
		Title       string       `json:"title"`
		Description string       `json:"description,omitempty"`
		Status      TaskStatus   `json:"status"`
		Priority    TaskPriority `json:"priority"`
		DueDate     Date         `json:"dueDate"`
		Assignee    string       `json:"assignee,omitempty"`
	}

	Vendor struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Trade       string `json:"trade,omitempty"`
		ContactName string `json:"contactName,omitempty"`
		Email       string `json:"email,omitempty"`
		Phone       string `json:"phone,omitempty"`
	}
)

// ErrValidation is wrapped by every record validation error.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidDay       = fmt.Errorf("%w: invalid day", ErrValidation)
	ErrInvalidMonth     = fmt.Errorf("%w: invalid month", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrValidation)
	ErrEmptyCategory    = fmt.Errorf("%w: empty category", ErrValidation)
	ErrEmptyProject     = fmt.Errorf("%w: missing project id", ErrValidation)
	ErrInvalidCostType  = fmt.Errorf("%w: invalid cost type", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidPriority  = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrTextTooLong      = fmt.Errorf("%w: text too long (max %d characters)", ErrValidation, maxTextLen)
)

func (c CostType) Valid() bool {
	switch c {
	case CostLabor, CostMaterial, CostBoth:
		return true
	}
	return false
}

func (s ChangeOrderStatus) Valid() bool {
	switch s {
	case COSubmitted, COApproved, COExecuted, CORejected:
		return true
	}
	return false
}

// CountsTowardContract reports whether a change order in this status
// modifies the contract sum. Only approved and executed orders do.
func (s ChangeOrderStatus) CountsTowardContract() bool {
	return s == COApproved || s == COExecuted
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

func (s RFIStatus) Valid() bool {
	switch s {
	case RFIOpen, RFIAnswered, RFIClosed:
		return true
	}
	return false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrValidation)
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is zero (optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func checkText(value string, empty error) error {
	if strings.TrimSpace(value) == "" {
		return empty
	}
	if len(value) > maxTextLen {
		return ErrTextTooLong
	}
	return nil
}

func checkProject(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrEmptyProject
	}
	return nil
}

func (p Project) Validate() error {
	if err := checkText(p.Name, ErrEmptyName); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if !p.StartDate.IsEmpty() && !p.EndDate.IsEmpty() && p.EndDate.Before(p.StartDate.Time) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	return nil
}

func (c BudgetCategory) Validate() error {
	return checkText(c.Name, ErrEmptyName)
}

func (b BudgetItem) Validate() error {
	if err := checkProject(b.ProjectID); err != nil {
		return err
	}
	if err := checkText(b.Category, ErrEmptyCategory); err != nil {
		return err
	}
	if !b.CostType.Valid() {
		return ErrInvalidCostType
	}
	return nil
}

func (e Expense) Validate() error {
	if err := checkProject(e.ProjectID); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := checkText(e.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return checkText(e.Category, ErrEmptyCategory)
}

func (c ChangeOrder) Validate() error {
	if err := checkProject(c.ProjectID); err != nil {
		return err
	}
	if err := checkText(c.Description, ErrEmptyDescription); err != nil {
		return err
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (r RFI) Validate() error {
	if err := checkProject(r.ProjectID); err != nil {
		return err
	}
	if err := checkText(r.Subject, ErrEmptyDescription); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (t Task) Validate() error {
	if err := checkProject(t.ProjectID); err != nil {
		return err
	}
	if err := checkText(t.Title, ErrEmptyName); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

func (v Vendor) Validate() error {
	return checkText(v.Name, ErrEmptyName)
}
