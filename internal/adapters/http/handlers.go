package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gradebook/core/internal/application/services"
	"github.com/gradebook/core/internal/domain/entities"
	"github.com/gradebook/core/internal/infrastructure/logger"
	"github.com/gradebook/core/internal/ports"
)

// MessageResponse is a generic message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles the admin login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Login failed", "error", err, "admin_id", req.ID)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// StudentHandler handles student record requests
type StudentHandler struct {
	studentService ports.StudentService
	logger         *logger.Logger
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService ports.StudentService, logger *logger.Logger) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		logger:         logger,
	}
}

// EnrollStudent handles student creation
func (h *StudentHandler) EnrollStudent(c echo.Context) error {
	var req ports.EnrollStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	student, err := h.studentService.EnrollStudent(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Enroll student failed", "error", err, "student_id", req.ID)
		return studentError(err)
	}

	return c.JSON(http.StatusCreated, student)
}

// GetStudent handles fetching a student by id
func (h *StudentHandler) GetStudent(c echo.Context) error {
	id := c.Param("id")

	student, err := h.studentService.GetStudent(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Get student failed", "error", err, "student_id", id)
		return studentError(err)
	}
	if student == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}

	return c.JSON(http.StatusOK, student)
}

// ListStudents handles listing all students
func (h *StudentHandler) ListStudents(c echo.Context) error {
	students, err := h.studentService.ListStudents(c.Request().Context())
	if err != nil {
		h.logger.Error("List students failed", "error", err)
		return studentError(err)
	}

	if students == nil {
		students = []*entities.Student{}
	}
	return c.JSON(http.StatusOK, students)
}

// UpdateStudent handles a partial update of a student
func (h *StudentHandler) UpdateStudent(c echo.Context) error {
	id := c.Param("id")

	var req ports.UpdateStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	student, err := h.studentService.UpdateStudent(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Error("Update student failed", "error", err, "student_id", id)
		return studentError(err)
	}

	return c.JSON(http.StatusOK, student)
}

// DeleteStudent handles removing a student
func (h *StudentHandler) DeleteStudent(c echo.Context) error {
	id := c.Param("id")

	if err := h.studentService.DeleteStudent(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete student failed", "error", err, "student_id", id)
		return studentError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Student deleted"})
}

// UpsertStudent handles insert-or-replace by id
func (h *StudentHandler) UpsertStudent(c echo.Context) error {
	var req ports.EnrollStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	student, err := h.studentService.UpsertStudent(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("Upsert student failed", "error", err, "student_id", req.ID)
		return studentError(err)
	}

	return c.JSON(http.StatusOK, student)
}

// studentError maps domain errors onto HTTP status codes.
func studentError(err error) error {
	switch {
	case errors.Is(err, entities.ErrInvalidStudent):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrStudentExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrStudentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Storage failure")
	}
}
