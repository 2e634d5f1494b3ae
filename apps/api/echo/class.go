package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/class"
)

type classApi struct {
	svc      *class.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := classApi{svc: opts.ClassSvc, validate: opts.Validate}

	cg := g.Group("/classes", jwt, teacher)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)

	cg.GET("/:id/students", api.queryStudents)
	cg.POST("/:id/students", api.addStudents)
	cg.DELETE("/:id/students/:studentId", api.removeStudent)
	cg.PUT("/:id/students/:studentId/team", api.assignStudentToTeam)

	cg.GET("/:id/teams", api.queryTeams)
	cg.POST("/teams", api.createTeam)
	cg.DELETE("/teams/:teamId", api.destroyTeam)
	cg.POST("/teams/:teamId/modules/:moduleId", api.assignModuleToTeam)
	cg.DELETE("/teams/:teamId/modules/:moduleId", api.unassignModuleFromTeam)
}

func (api *classApi) query(ctx echo.Context) error {
	if ctx.QueryParam("mine") != "" {
		return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
	}
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	cls, err := api.svc.Create(contextTeacherID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return classErr(err, "finding class by ID")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	cls, err := api.svc.Update(contextTeacherID(ctx), ctx.Param("id"), data)
	if err != nil {
		return classErr(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return classErr(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) queryStudents(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.StudentsInClass(ctx.Param("id")))
}

func (api *classApi) addStudents(ctx echo.Context) error {
	var data struct {
		StudentIDs []string `json:"studentIds"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding student ids")
	}
	added, err := api.svc.AddStudents(ctx.Param("id"), data.StudentIDs)
	if err != nil {
		return classErr(err, "adding students")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"added": added})
}

func (api *classApi) removeStudent(ctx echo.Context) error {
	if err := api.svc.RemoveStudent(ctx.Param("id"), ctx.Param("studentId")); err != nil {
		return classErr(err, "removing student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) assignStudentToTeam(ctx echo.Context) error {
	var data struct {
		TeamID string `json:"teamId" validate:"required"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding team id")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if err := api.svc.AssignStudentToTeam(ctx.Param("id"), ctx.Param("studentId"), data.TeamID); err != nil {
		return classErr(err, "assigning student to team")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) queryTeams(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.TeamsForClass(ctx.Param("id")))
}

func (api *classApi) createTeam(ctx echo.Context) error {
	var data class.NewTeam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	team, err := api.svc.CreateTeam(contextTeacherID(ctx), data)
	if err != nil {
		return classErr(err, "creating team")
	}
	return ctx.JSON(http.StatusCreated, team)
}

func (api *classApi) destroyTeam(ctx echo.Context) error {
	if err := api.svc.DeleteTeam(contextTeacherID(ctx), ctx.Param("teamId")); err != nil {
		return classErr(err, "deleting team")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) assignModuleToTeam(ctx echo.Context) error {
	link, err := api.svc.AssignModuleToTeam(contextTeacherID(ctx), ctx.Param("moduleId"), ctx.Param("teamId"))
	if err != nil {
		return classErr(err, "assigning module to team")
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *classApi) unassignModuleFromTeam(ctx echo.Context) error {
	if err := api.svc.UnassignModuleFromTeam(ctx.Param("moduleId"), ctx.Param("teamId")); err != nil {
		return classErr(err, "unassigning module from team")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func classErr(err error, msg string) error {
	switch errors.Cause(err) {
	case class.ErrNotFound, class.ErrTeamNotFound:
		return errHttpNotFound
	case class.ErrPermissionDenied:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
