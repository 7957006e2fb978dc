// Package front serves the server-rendered helpdesk pages. Edits here follow
// the ownership rule (creator, assignee, or superuser) rather than the API's
// role groups.
package front

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"github.com/openticket/helpdesk/internal/auth"
	"github.com/openticket/helpdesk/internal/config"
	"github.com/openticket/helpdesk/internal/domain"
	"github.com/openticket/helpdesk/internal/repository"
	"github.com/openticket/helpdesk/internal/service"
	"github.com/openticket/helpdesk/internal/workflow"
	apperrors "github.com/openticket/helpdesk/pkg/util/errorutil"
)

//go:embed views
var viewsFS embed.FS

const (
	layout        = "layouts/main"
	loginPath     = "/login"
	dashboardPath = "/dashboard"
	forbiddenPath = "/forbidden"
	pageSize      = 10

	genericFailure = "Something went wrong. Please try again."
)

// NewEngine returns the template engine for the embedded views.
func NewEngine() *html.Engine {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFuncMap(templateFuncs())
	return engine
}

// NewSessionStore builds the cookie-keyed session store for rendered pages.
func NewSessionStore(cfg config.SessionConfig) *session.Store {
	return session.New(session.Config{
		Expiration:     cfg.Expiry(),
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// Handler serves the rendered pages.
type Handler struct {
	tickets  *service.TicketService
	auth     *service.AuthService
	sessions *session.Store
	logger   *zap.Logger
}

// NewHandler constructs handler.
func NewHandler(tickets *service.TicketService, authService *service.AuthService, sessions *session.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{tickets: tickets, auth: authService, sessions: sessions, logger: logger}
}

// RegisterRoutes wires the page routes. users loads the session's account.
func (h *Handler) RegisterRoutes(app *fiber.App, users auth.UserLookup) {
	app.Get("/", h.LoginPage)
	app.Get(loginPath, h.LoginPage)
	app.Post(loginPath, h.Login)

	// per-route rather than a group so unmatched API paths still 404
	signedIn := auth.SessionMiddleware(h.sessions, users, loginPath)
	app.Get("/logout", signedIn, h.Logout)
	app.Get(dashboardPath, signedIn, h.Dashboard)
	app.Get("/ticket/:id<int>", signedIn, h.TicketDetail)
	app.Get("/ticket/:id<int>/edit", signedIn, h.EditTicketPage)
	app.Post("/ticket/:id<int>/edit", signedIn, h.EditTicket)
	app.Post("/create-ticket", signedIn, h.CreateTicket)
	app.Get("/create-ticket", signedIn, h.redirect(dashboardPath))
	app.Get(forbiddenPath, signedIn, h.Forbidden)
}

// LoginPage GET /login.
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	if _, ok := sess.Get(auth.SessionUserKey).(int64); ok {
		return c.Redirect(dashboardPath, fiber.StatusFound)
	}
	return h.render(c, sess, "login", fiber.Map{"Next": c.Query("next")})
}

// Login POST /login.
func (h *Handler) Login(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Authenticate(c.UserContext(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeUnauthorized) && !apperrors.HasCode(err, apperrors.CodeValidation) {
			h.logger.Error("login failed", zap.Error(err))
		}
		addFlash(sess, FlashError, "Invalid email or password.")
		return h.saveAndRedirect(c, sess, loginPath)
	}

	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(auth.SessionUserKey, user.ID)
	addFlash(sess, FlashSuccess, fmt.Sprintf("Welcome, %s!", user.FullName()))
	return h.saveAndRedirect(c, sess, safeNext(c.FormValue("next")))
}

// Logout GET /logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Reset(); err != nil {
		return err
	}
	addFlash(sess, FlashInfo, "You have been logged out.")
	return h.saveAndRedirect(c, sess, loginPath)
}

// Dashboard GET /dashboard lists every ticket with optional filters.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	status := strings.TrimSpace(c.Query("status"))
	priority := strings.TrimSpace(c.Query("priority"))
	search := strings.TrimSpace(c.Query("search"))

	var filter repository.TicketFilter
	if status != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(status)}
	}
	if priority != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(priority)}
	}
	if search != "" {
		filter.TitleTerm = &search
	}

	page, err := h.tickets.ListAll(c.UserContext(), service.TicketListInput{
		Filter: filter,
		Sort:   repository.DefaultTicketSort,
		Page:   repository.PageRequest{Page: c.QueryInt("page", 1), PageSize: pageSize},
	})
	if err != nil {
		h.logger.Error("dashboard listing failed", zap.Error(err))
		addFlash(sess, FlashError, genericFailure)
		page = repository.Page[domain.Ticket]{Page: 1, PageSize: pageSize}
	}

	return h.render(c, sess, "dashboard", fiber.Map{
		"Page":            page,
		"StatusChoices":   domain.StatusChoices(),
		"PriorityChoices": domain.PriorityChoices(),
		"CurrentStatus":   status,
		"CurrentPriority": priority,
		"SearchQuery":     search,
	})
}

// TicketDetail GET /ticket/:id.
func (h *Handler) TicketDetail(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetAny(c.UserContext(), pageTicketID(c))
	if err != nil {
		return h.fail(c, sess, err, 0)
	}
	return h.render(c, sess, "ticket_detail", fiber.Map{
		"Ticket":              ticket,
		"NonEditableStatuses": domain.NonEditableStatuses(),
	})
}

// EditTicketPage GET /ticket/:id/edit.
func (h *Handler) EditTicketPage(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	user, _ := auth.UserFromContext(c)
	ticket, err := h.tickets.EditableByOwner(c.UserContext(), user, pageTicketID(c))
	if err != nil {
		return h.fail(c, sess, err, pageTicketID(c))
	}
	return h.render(c, sess, "edit_ticket", fiber.Map{
		"Ticket":          ticket,
		"StatusChoices":   domain.EditableStatusChoices(),
		"PriorityChoices": domain.PriorityChoices(),
	})
}

// EditTicket POST /ticket/:id/edit. All form fields but department are required.
func (h *Handler) EditTicket(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	user, _ := auth.UserFromContext(c)
	id := pageTicketID(c)
	editPath := ticketPath(id) + "/edit"

	if _, err := h.tickets.EditableByOwner(c.UserContext(), user, id); err != nil {
		return h.fail(c, sess, err, id)
	}

	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	priority := domain.TicketPriority(strings.TrimSpace(c.FormValue("priority")))
	status := domain.TicketStatus(strings.TrimSpace(c.FormValue("status")))
	department := strings.TrimSpace(c.FormValue("department"))

	for _, field := range []struct{ name, value string }{
		{"Title", title},
		{"Description", description},
		{"Priority", string(priority)},
		{"Status", string(status)},
	} {
		if field.value == "" {
			addFlash(sess, FlashError, field.name+" is required.")
			return h.saveAndRedirect(c, sess, editPath)
		}
	}

	ticket, err := h.tickets.UpdateAsOwner(c.UserContext(), user, id, workflow.UpdateFields{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		Status:      &status,
		Department:  &department,
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeValidation) {
			addFlash(sess, FlashError, "Error updating ticket: "+apperrors.ToDomainError(err).Message)
			return h.saveAndRedirect(c, sess, editPath)
		}
		return h.fail(c, sess, err, id)
	}
	addFlash(sess, FlashSuccess, fmt.Sprintf("Ticket #%d updated successfully!", ticket.ID))
	return h.saveAndRedirect(c, sess, ticketPath(ticket.ID))
}

// CreateTicket POST /create-ticket.
func (h *Handler) CreateTicket(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	user, _ := auth.UserFromContext(c)

	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("description"))
	priority := strings.TrimSpace(c.FormValue("priority"))
	for _, field := range []struct{ name, value string }{
		{"Title", title},
		{"Description", description},
		{"Priority", priority},
	} {
		if field.value == "" {
			addFlash(sess, FlashError, field.name+" is required.")
			return h.saveAndRedirect(c, sess, dashboardPath)
		}
	}

	ticket, err := h.tickets.Create(c.UserContext(), user, workflow.CreateFields{
		Title:       title,
		Description: description,
		Priority:    domain.TicketPriority(priority),
		Department:  c.FormValue("department"),
	})
	if err != nil {
		h.logger.Warn("create ticket from form failed", zap.Error(err))
		addFlash(sess, FlashError, "Error creating ticket: "+apperrors.ToDomainError(err).Message)
		return h.saveAndRedirect(c, sess, dashboardPath)
	}
	addFlash(sess, FlashSuccess, fmt.Sprintf("Ticket #%d created successfully!", ticket.ID))
	return h.saveAndRedirect(c, sess, ticketPath(ticket.ID))
}

// Forbidden GET /forbidden.
func (h *Handler) Forbidden(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusForbidden)
	return h.render(c, sess, "forbidden", fiber.Map{})
}

// fail maps service errors onto flash messages and redirects.
func (h *Handler) fail(c *fiber.Ctx, sess *session.Session, err error, id int64) error {
	domainErr := apperrors.ToDomainError(err)
	switch domainErr.Code {
	case apperrors.CodeNotFound:
		addFlash(sess, FlashError, "Ticket not found.")
		return h.saveAndRedirect(c, sess, dashboardPath)
	case apperrors.CodeInvalidTransition:
		addFlash(sess, FlashError, domainErr.Message)
		return h.saveAndRedirect(c, sess, ticketPath(id))
	case apperrors.CodeForbidden:
		addFlash(sess, FlashError, domainErr.Message)
		return h.saveAndRedirect(c, sess, forbiddenPath)
	default:
		h.logger.Error("page request failed", zap.String("path", c.Path()), zap.Error(err))
		addFlash(sess, FlashError, genericFailure)
		return h.saveAndRedirect(c, sess, dashboardPath)
	}
}

func (h *Handler) render(c *fiber.Ctx, sess *session.Session, name string, data fiber.Map) error {
	data["Flashes"] = popFlashes(sess)
	if user, ok := auth.UserFromContext(c); ok {
		data["User"] = user
	}
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Render(name, data, layout)
}

func (h *Handler) saveAndRedirect(c *fiber.Ctx, sess *session.Session, location string) error {
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect(location, fiber.StatusFound)
}

func (h *Handler) redirect(location string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Redirect(location, fiber.StatusFound)
	}
}

func pageTicketID(c *fiber.Ctx) int64 {
	id, _ := strconv.ParseInt(c.Params("id"), 10, 64)
	return id
}

func ticketPath(id int64) string {
	return "/ticket/" + strconv.FormatInt(id, 10)
}

// safeNext only follows local paths.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return dashboardPath
}
