// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/medilens/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/medilens/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/medilens/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/medilens/internal/application"
	"github.com/ericfisherdev/medilens/internal/domain/model"
)

const (
	// maxUploadBytes caps an uploaded image.
	maxUploadBytes = 10 << 20
	// maxBodyBytes caps any POST body: the image plus form overhead.
	maxBodyBytes = maxUploadBytes + 1<<20
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	session     *application.Session
	locator     *application.Locator
	analysisSvc *application.AnalysisService
	canLocate   bool
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. canLocate
// controls whether the "use my location" control is offered.
func NewHandler(
	session *application.Session,
	locator *application.Locator,
	analysisSvc *application.AnalysisService,
	canLocate bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session:     session,
		locator:     locator,
		analysisSvc: analysisSvc,
		canLocate:   canLocate,
		logger:      logger,
	}
}

// render wraps body in the layout and writes it.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, body func(csrf string) templ.Component) {
	csrf := ensureCSRFToken(w, r)
	screen := h.session.Screen(r.Context())
	page := vm.PageViewModel{
		Title:         title,
		View:          string(screen.View),
		Authenticated: screen.Authenticated,
		Subject:       screen.Subject,
		CSRFToken:     csrf,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(page, body(csrf)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}

func (h *Handler) redirectToView(w http.ResponseWriter, r *http.Request, v model.View) {
	target := "/"
	if v != model.ViewSplash {
		target += string(v)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Index renders the splash view, or redirects to the current view once the
// splash has been left.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	screen := h.session.Screen(r.Context())
	if screen.View != model.ViewSplash {
		h.redirectToView(w, r, screen.View)
		return
	}
	h.render(w, r, http.StatusOK, "Welcome", func(csrf string) templ.Component {
		return pages.Splash(h.session.SplashDuration(), csrf)
	})
}

// Continue leaves the splash view.
func (h *Handler) Continue(w http.ResponseWriter, r *http.Request) {
	h.redirectToView(w, r, h.session.ContinueFromSplash(r.Context()))
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewLogin)
	h.renderLogin(w, r, http.StatusOK, vm.LoginFormViewModel{})
}

// Login authenticates and redirects to text analysis on success.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewLogin)
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if err := h.session.Login(r.Context(), username, password); err != nil {
		h.logger.Warn("login failed", "kind", application.Classify(err), "error", err)
		h.renderLogin(w, r, http.StatusOK, vm.LoginFormViewModel{
			Username: username,
			Message:  errorMessage(application.LoginMessage(err)),
		})
		return
	}

	http.Redirect(w, r, "/text", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form vm.LoginFormViewModel) {
	h.render(w, r, status, "Login", func(csrf string) templ.Component {
		return pages.Login(form, csrf)
	})
}

// SignupPage renders the signup form.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewSignup)
	h.render(w, r, http.StatusOK, "Sign up", func(csrf string) templ.Component {
		return pages.Signup(vm.SignupFormViewModel{}, csrf)
	})
}

// Signup creates an account and shows the login form on success.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewSignup)
	form := vm.SignupFormViewModel{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
	}

	if err := h.session.Signup(r.Context(), form.Name, form.Email, r.PostFormValue("password")); err != nil {
		h.logger.Warn("signup failed", "kind", application.Classify(err), "error", err)
		form.Message = errorMessage(application.UserMessage(err))
		h.render(w, r, http.StatusOK, "Sign up", func(csrf string) templ.Component {
			return pages.Signup(form, csrf)
		})
		return
	}

	h.renderLogin(w, r, http.StatusOK, vm.LoginFormViewModel{
		Username: form.Email,
		Message:  successMessage(application.MsgSignupSucceeded),
	})
}

// Logout clears the credential and redirects to login.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// TextPage renders the text analysis form.
func (h *Handler) TextPage(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewText)
	h.renderText(w, r, http.StatusOK, h.newAnalysisForm("/text"))
}

// AnalyzeText submits the symptoms and renders the result.
func (h *Handler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewText)
	form := h.newAnalysisForm("/text")
	form.Symptoms = r.PostFormValue("symptoms")

	if !h.session.Authenticated(r.Context()) {
		h.renderText(w, r, http.StatusOK, form)
		return
	}

	coords, err := h.requestCoordinates(r, &form)
	if err == nil {
		var result model.AnalysisResult
		result, err = h.analysisSvc.AnalyzeText(r.Context(), form.Symptoms, coords)
		if err == nil {
			v := toAnalysisViewModel(result)
			form.Result = &v
		}
	}
	if err != nil {
		h.logAnalysisError("text", err)
		form.Message = errorMessage(application.UserMessage(err))
	}

	h.renderText(w, r, http.StatusOK, form)
}

func (h *Handler) renderText(w http.ResponseWriter, r *http.Request, status int, form vm.AnalysisFormViewModel) {
	h.render(w, r, status, "Text Analysis", func(csrf string) templ.Component {
		if !h.session.Authenticated(r.Context()) {
			return templates.NotAuthenticated("analyze your symptoms")
		}
		return pages.TextAnalysis(form, csrf)
	})
}

// ImagePage renders the image analysis form.
func (h *Handler) ImagePage(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewImage)
	h.renderImage(w, r, http.StatusOK, h.newAnalysisForm("/image"))
}

// AnalyzeImage submits the uploaded image and renders the result.
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewImage)
	form := h.newAnalysisForm("/image")
	form.Symptoms = r.PostFormValue("symptoms")

	if !h.session.Authenticated(r.Context()) {
		h.renderImage(w, r, http.StatusOK, form)
		return
	}

	image, err := readImage(r)
	var coords *model.Coordinates
	if err == nil {
		coords, err = h.requestCoordinates(r, &form)
	}
	if err == nil {
		var result model.AnalysisResult
		result, err = h.analysisSvc.AnalyzeImage(r.Context(), image, form.Symptoms, coords)
		if err == nil {
			v := toAnalysisViewModel(result)
			form.Result = &v
		}
	}
	if err != nil {
		h.logAnalysisError("image", err)
		form.Message = errorMessage(application.UserMessage(err))
	}

	h.renderImage(w, r, http.StatusOK, form)
}

func (h *Handler) renderImage(w http.ResponseWriter, r *http.Request, status int, form vm.AnalysisFormViewModel) {
	h.render(w, r, status, "Image Analysis", func(csrf string) templ.Component {
		if !h.session.Authenticated(r.Context()) {
			return templates.NotAuthenticated("analyze images")
		}
		return pages.ImageAnalysis(form, csrf)
	})
}

// readImage reads the "image" part of a multipart form. A missing file
// yields an empty image so validation reports it.
func readImage(r *http.Request) (model.ImageFile, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return model.ImageFile{}, nil
	}
	if err != nil {
		return model.ImageFile{}, &model.ValidationError{Field: "image", Message: application.MsgImageRequired}
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		return model.ImageFile{}, &model.ValidationError{Field: "image", Message: "Image must be 10 MB or smaller."}
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return model.ImageFile{}, err
	}
	if len(data) > maxUploadBytes {
		return model.ImageFile{}, &model.ValidationError{Field: "image", Message: "Image must be 10 MB or smaller."}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return model.ImageFile{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

// HistoryPage renders past analyses.
func (h *Handler) HistoryPage(w http.ResponseWriter, r *http.Request) {
	_ = h.session.Navigate(model.ViewHistory)
	if !h.session.Authenticated(r.Context()) {
		h.render(w, r, http.StatusOK, "History", func(string) templ.Component {
			return templates.NotAuthenticated("see your analysis history")
		})
		return
	}

	view := vm.HistoryViewModel{Entries: []vm.HistoryEntryViewModel{}}
	entries, err := h.analysisSvc.History(r.Context())
	if err != nil {
		h.logger.Error("failed to load history", "kind", application.Classify(err), "error", err)
		view.Message = errorMessage(application.UserMessage(err))
	} else {
		view.Entries = toHistoryViewModels(entries)
	}

	h.render(w, r, http.StatusOK, "History", func(string) templ.Component {
		return pages.History(view)
	})
}

// Location requests the device position, or stores manually entered
// coordinates, then returns to the originating page.
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	if r.PostFormValue("action") == "request" {
		state := h.locator.Request(r.Context())
		h.logger.Info("location requested", "status", state.Status)
	} else {
		lat, lon := r.PostFormValue("latitude"), r.PostFormValue("longitude")
		coords, err := model.ParseCoordinates(lat, lon)
		if err != nil {
			h.logger.Warn("invalid coordinates", "error", err)
			h.renderInvalidLocation(w, r, lat, lon, err)
			return
		}
		if coords != nil {
			_ = h.locator.SetCoordinates(*coords)
		}
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// renderInvalidLocation shows the originating form again with the rejected
// coordinates and the validation message.
func (h *Handler) renderInvalidLocation(w http.ResponseWriter, r *http.Request, lat, lon string, err error) {
	path := returnPath(r)
	form := h.newAnalysisForm(path)
	form.Location.Latitude, form.Location.Longitude = lat, lon
	form.Message = errorMessage(application.UserMessage(err))

	if path == "/image" {
		_ = h.session.Navigate(model.ViewImage)
		h.renderImage(w, r, http.StatusBadRequest, form)
		return
	}
	_ = h.session.Navigate(model.ViewText)
	h.renderText(w, r, http.StatusBadRequest, form)
}

// ClearLocation discards coordinates and returns to the originating page.
func (h *Handler) ClearLocation(w http.ResponseWriter, r *http.Request) {
	h.locator.Clear()
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// returnPath limits post-submit redirects to the analysis views.
func returnPath(r *http.Request) string {
	switch p := r.PostFormValue("return"); p {
	case "/text", "/image":
		return p
	default:
		return "/text"
	}
}

func (h *Handler) newAnalysisForm(path string) vm.AnalysisFormViewModel {
	return vm.AnalysisFormViewModel{
		Location:    toLocationViewModel(h.locator.State(), path, h.canLocate),
		MaxUploadMB: maxUploadBytes >> 20,
	}
}

// requestCoordinates resolves the coordinates for an analysis: the form
// fields when filled in, otherwise the locator's current coordinates. Form
// coordinates are kept in the form so they survive the round trip.
func (h *Handler) requestCoordinates(r *http.Request, form *vm.AnalysisFormViewModel) (*model.Coordinates, error) {
	lat, lon := r.PostFormValue("latitude"), r.PostFormValue("longitude")
	coords, err := model.ParseCoordinates(lat, lon)
	if err != nil {
		form.Location.Latitude, form.Location.Longitude = lat, lon
		return nil, err
	}
	if coords == nil {
		return h.locator.Coordinates(), nil
	}
	form.Location.Latitude, form.Location.Longitude = strings.TrimSpace(lat), strings.TrimSpace(lon)
	return coords, nil
}

func (h *Handler) logAnalysisError(kind string, err error) {
	switch application.Classify(err) {
	case model.ErrorKindValidation:
		h.logger.Debug("analysis rejected", "kind", kind, "error", err)
	default:
		h.logger.Error("analysis failed", "kind", kind, "error_kind", application.Classify(err), "error", err)
	}
}
