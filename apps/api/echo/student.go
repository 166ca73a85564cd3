package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/student"
)

type studentApi struct {
	svc student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, teacherMiddleware())
	sg.POST("", api.create, teacherMiddleware())

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve, ctxStudentOrTeacherMiddleware())
	dg.GET("/subjects", api.assignedSubjects, ctxStudentOrTeacherMiddleware())
	dg.POST("/subjects", api.assignSubjects, teacherMiddleware())

	og := dg.Group("/subjects/:subjectID/outcomes/:outcomeID")
	og.PUT("/progress", api.setProgress, teacherMiddleware())
	og.GET("/projects", api.queryProjects, ctxStudentOrTeacherMiddleware())
	og.POST("/projects", api.submitProject, ctxStudentMiddleware())
	og.PUT("/projects/:projectID", api.assessProject, teacherMiddleware())
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) assignedSubjects(ctx echo.Context) error {
	assigned, err := api.svc.GetAssignedSubjects(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assigned)
}

func (api *studentApi) assignSubjects(ctx echo.Context) error {
	assigned, err := api.svc.AssignSubjects(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assigned)
}

func (api *studentApi) setProgress(ctx echo.Context) error {
	var data ProgressRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressRequest")
	}

	outcome, err := api.svc.SetOutcomeCompletion(
		ctx.Request().Context(), ctx.Param("id"), ctx.Param("subjectID"), ctx.Param("outcomeID"), data.Completed)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, outcome)
}

func (api *studentApi) queryProjects(ctx echo.Context) error {
	projects, err := api.svc.ListProjects(
		ctx.Request().Context(), ctx.Param("id"), ctx.Param("subjectID"), ctx.Param("outcomeID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *studentApi) submitProject(ctx echo.Context) error {
	var data student.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}

	project, err := api.svc.SubmitProject(
		ctx.Request().Context(), ctx.Param("id"), ctx.Param("subjectID"), ctx.Param("outcomeID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, project)
}

func (api *studentApi) assessProject(ctx echo.Context) error {
	var data student.ProjectDecision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProjectDecision")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if data.AssessedBy == "" {
		data.AssessedBy = claims.Name
	}

	project, err := api.svc.AssessProject(
		ctx.Request().Context(),
		ctx.Param("id"), ctx.Param("subjectID"), ctx.Param("outcomeID"), ctx.Param("projectID"),
		data,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, project)
}

type ProgressRequest struct {
	Completed bool `json:"completed"`
}
