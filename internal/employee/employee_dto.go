package employee

type ChangeEmploymentRequest struct {
	PositionID   int    `json:"position_id" binding:"required"`
	DepartmentID int    `json:"department_id" binding:"required"`
	Type         string `json:"type" binding:"required,oneof=Teaching Non-Teaching"`
}

type EmployeeResponse struct {
	EmployeeID   string `json:"employee_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	DepartmentID int    `json:"department_id"`
	PositionID   int    `json:"position_id"`
	DateHired    string `json:"date_hired"`
	Type         string `json:"type"`
}
